package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDataPath    string = "/tmp/data"
	DefaultListenPort  string = "8484"
	DefaultServerURL   string = "http://localhost:8484"
	DefaultTopicPrefix string = "orion"
	DefaultClientID    string = "orion-logger"
)

type Config struct {
	DataPath   string           `yaml:"data_path"`
	StrictSlug bool             `yaml:"strict_slug"`
	Server     ServerConfig     `yaml:"server"`
	Forwarding ForwardingConfig `yaml:"forwarding"`

	LogLevel zerolog.Level `yaml:"-"`
}

type ServerConfig struct {
	ListenPort string `yaml:"listen_port"`
	URL        string `yaml:"url"`
}

type ForwardingConfig struct {
	SenMLEndpointURL string     `yaml:"senml_endpoint_url"`
	ContextBrokerURL string     `yaml:"context_broker_url"`
	MQTT             MQTTConfig `yaml:"mqtt"`
}

type MQTTConfig struct {
	BrokerURL   string `yaml:"broker_url"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
}

func (m MQTTConfig) Enabled() bool {
	return m.BrokerURL != ""
}

func Default() Config {
	return Config{
		DataPath: DefaultDataPath,
		Server: ServerConfig{
			ListenPort: DefaultListenPort,
			URL:        DefaultServerURL,
		},
		Forwarding: ForwardingConfig{
			MQTT: MQTTConfig{
				ClientID:    DefaultClientID,
				TopicPrefix: DefaultTopicPrefix,
			},
		},
		LogLevel: zerolog.WarnLevel,
	}
}

// Load reads the optional yaml file pointed to by ORION_CONFIG and applies
// environment overrides on top of it.
func Load(log zerolog.Logger) (Config, error) {
	cfg := Default()

	if path := env.GetVariableOrDefault(log, "ORION_CONFIG", ""); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		cfg, err = Parse(b)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvironment(log, &cfg)

	return cfg, nil
}

func Parse(b []byte) (Config, error) {
	cfg := Default()

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func applyEnvironment(log zerolog.Logger, cfg *Config) {
	cfg.DataPath = env.GetVariableOrDefault(log, "ORION_DATA_PATH", cfg.DataPath)
	cfg.Server.ListenPort = env.GetVariableOrDefault(log, "ORION_LISTEN_PORT", cfg.Server.ListenPort)
	cfg.Server.URL = env.GetVariableOrDefault(log, "ORION_SERVER_URL", cfg.Server.URL)

	strict := env.GetVariableOrDefault(log, "ORION_STRICT_SLUG", "")
	if strict != "" {
		cfg.StrictSlug = isTrue(strict)
	}

	fw := &cfg.Forwarding
	fw.SenMLEndpointURL = env.GetVariableOrDefault(log, "SENML_ENDPOINT_URL", fw.SenMLEndpointURL)
	fw.ContextBrokerURL = env.GetVariableOrDefault(log, "CONTEXT_BROKER_URL", fw.ContextBrokerURL)
	fw.MQTT.BrokerURL = env.GetVariableOrDefault(log, "MQTT_BROKER_URL", fw.MQTT.BrokerURL)
	fw.MQTT.ClientID = env.GetVariableOrDefault(log, "MQTT_CLIENT_ID", fw.MQTT.ClientID)
	fw.MQTT.TopicPrefix = env.GetVariableOrDefault(log, "MQTT_TOPIC_PREFIX", fw.MQTT.TopicPrefix)
	fw.MQTT.Username = env.GetVariableOrDefault(log, "MQTT_USER", fw.MQTT.Username)
	fw.MQTT.Password = env.GetVariableOrDefault(log, "MQTT_PASSWORD", fw.MQTT.Password)
}

func isTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// LogLevel maps the verbosity flags of the command line to a log level.
// Combining verbose and debug enables trace output.
func LogLevel(verbose, debug bool) zerolog.Level {
	switch {
	case verbose && debug:
		return zerolog.TraceLevel
	case verbose:
		return zerolog.InfoLevel
	case debug:
		return zerolog.DebugLevel
	default:
		return zerolog.WarnLevel
	}
}
