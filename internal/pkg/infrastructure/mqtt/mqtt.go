package mqtt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/diwise/orion-logger/domain"
	"github.com/diwise/orion-logger/internal/pkg/infrastructure/config"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectQuiesce = 250 // milliseconds
	publishQoS               = 1
)

var (
	ErrConnectionFailed = errors.New("mqtt connection failed")
	ErrPublishTimeout   = errors.New("mqtt publish timed out")
)

type Publisher interface {
	Publish(ctx context.Context, mp domain.MeasurementPoint) error
	Close() error
}

type publisher struct {
	client  pahomqtt.Client
	prefix  string
	timeout time.Duration
}

func newPublisher(client pahomqtt.Client, prefix string) *publisher {
	return &publisher{
		client:  client,
		prefix:  prefix,
		timeout: defaultPublishTimeout,
	}
}

func Connect(cfg config.MQTTConfig) (Publisher, error) {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(defaultConnectTimeout)

	client := pahomqtt.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return newPublisher(client, cfg.TopicPrefix), nil
}

// TopicFor returns <prefix>/<driver>/<node>/<port>. Empty device parts are
// kept as empty topic levels.
func TopicFor(prefix string, d domain.Device) string {
	return strings.Join([]string{prefix, d.Driver(), d.Node(), d.Port()}, "/")
}

func Payload(mp domain.MeasurementPoint) []byte {
	return []byte(strings.TrimSuffix(mp.Line(), "\n"))
}

func (p *publisher) Publish(ctx context.Context, mp domain.MeasurementPoint) error {
	topic := TopicFor(p.prefix, mp.Device)

	log := logging.GetFromContext(ctx)
	log.Debug().Str("topic", topic).Msg("publishing measurement point")

	token := p.client.Publish(topic, publishQoS, false, Payload(mp))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
	case <-time.After(p.timeout):
		return fmt.Errorf("%w: %s", ErrPublishTimeout, topic)
	}

	return token.Error()
}

func (p *publisher) Close() error {
	p.client.Disconnect(defaultDisconnectQuiesce)
	return nil
}
