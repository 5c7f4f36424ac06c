package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/diwise/context-broker/pkg/ngsild/client"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/diwise/orion-logger/internal/pkg/application"
	"github.com/diwise/orion-logger/internal/pkg/infrastructure/channel"
	"github.com/diwise/orion-logger/internal/pkg/infrastructure/config"
	"github.com/diwise/orion-logger/internal/pkg/infrastructure/mqtt"
	"github.com/diwise/orion-logger/internal/pkg/infrastructure/router"
	"github.com/diwise/orion-logger/internal/pkg/infrastructure/storage"
)

const serviceName string = "orion-logger"

var tracer = otel.Tracer("orion-logger/cli")

func main() {
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	serviceVersion := buildinfo.SourceVersion()

	ctx, logger, cleanup := o11y.Init(context.Background(), serviceName, serviceVersion)
	defer cleanup()

	return run(ctx, logger, os.Args[1:], os.Stdout, serviceVersion)
}

type options struct {
	verbose     bool
	debug       bool
	now         bool
	timestamp   string
	showVersion bool
	positional  []string
}

func parseArgs(args []string) (options, error) {
	opts := options{}

	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	fs.BoolVar(&opts.verbose, "v", false, "verbose output")
	fs.BoolVar(&opts.verbose, "verbose", false, "verbose output")
	fs.BoolVar(&opts.debug, "debug", false, "very verbose output")
	fs.BoolVar(&opts.now, "now", false, "use current time as timestamp")
	fs.StringVar(&opts.timestamp, "timestamp", "", "IETF RFC3339 timestamp")
	fs.BoolVar(&opts.showVersion, "version", false, "show version")

	positional, err := parseInterspersed(fs, args)
	opts.positional = positional

	return opts, err
}

// parseInterspersed lets flags appear anywhere among the positional
// arguments. Arguments that look like negative values are positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	positional := []string{}

	for len(args) > 0 {
		i := 0
		for i < len(args) && !isNegativeValue(args[i]) {
			i++
		}

		head := args[:i]
		for len(head) > 0 {
			if err := fs.Parse(head); err != nil {
				return positional, err
			}

			head = fs.Args()
			if len(head) > 0 {
				positional = append(positional, head[0])
				head = head[1:]
			}
		}

		if i == len(args) {
			break
		}

		positional = append(positional, args[i])
		args = args[i+1:]
	}

	return positional, nil
}

// isNegativeValue reports whether arg is a measurement value such as
// "-5[A]", "-.5[V]" or "-inf[V]" rather than a flag. No flag contains '['.
func isNegativeValue(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}

	c := arg[1]
	return (c >= '0' && c <= '9') || c == '.' || strings.ContainsRune(arg, '[')
}

func run(ctx context.Context, logger zerolog.Logger, args []string, stdout io.Writer, version string) int {
	opts, err := parseArgs(args)
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprint(stdout, usage)
		return 0
	} else if err != nil {
		fmt.Fprintf(stdout, "%s\n\n%s", err.Error(), usage)
		return 1
	}

	logger = logger.Level(config.LogLevel(opts.verbose, opts.debug))

	if opts.showVersion {
		fmt.Fprintf(stdout, "Orion Logger %s\n%s", version, copyright)
		return 0
	}

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load configuration")
		return 1
	}
	cfg.LogLevel = logger.GetLevel()

	p := opts.positional
	if len(p) == 0 {
		fmt.Fprint(stdout, usage)
		return 1
	}

	switch {
	case p[0] == "add" && len(p) == 4 && p[2] == "from" && opts.now != (opts.timestamp != ""):
		return add(ctx, logger, cfg, p[1], opts.timestamp, p[3], stdout)
	case p[0] == "server" && len(p) == 2 && p[1] == "start":
		return startServer(ctx, logger, cfg)
	case p[0] == "server" && len(p) == 2 && p[1] == "stop":
		return stopServer(ctx, logger, cfg, stdout)
	}

	fmt.Fprint(stdout, usage)
	return 1
}

func add(ctx context.Context, logger zerolog.Logger, cfg config.Config, value, timestamp, device string, stdout io.Writer) int {
	mp, err := application.BuildPoint(device, value, timestamp, time.Now, cfg.StrictSlug)
	if err != nil {
		fmt.Fprint(stdout, messageFor(err))
		return 1
	}

	app, closeForwarders := newApp(logger, cfg)
	defer closeForwarders()

	ctx, span := tracer.Start(ctx, "add")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	_, ctx, logger = o11y.AddTraceIDToLoggerAndStoreInContext(span, logger, ctx)

	err = app.Add(ctx, mp)

	var fwdErr *application.ForwardError
	if errors.As(err, &fwdErr) {
		logger.Warn().Err(err).Msg("measurement point stored but not forwarded")
		return 0
	} else if err != nil {
		logger.Error().Err(err).Msg("failed to add measurement point")
		return 1
	}

	return 0
}

func messageFor(err error) string {
	switch application.ReasonFor(err) {
	case "INVALID_TIMESTAMP":
		return invalidTimestamp
	case "INVALID_VALUE":
		return invalidValue
	case "INVALID_DEVICE":
		return invalidDevice
	default:
		return err.Error() + "\n"
	}
}

func startServer(ctx context.Context, logger zerolog.Logger, cfg config.Config) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, closeForwarders := newApp(logger, cfg)
	defer closeForwarders()

	r := router.SetupRouter(chi.NewRouter(), app, logger)

	if err := r.Start(ctx, cfg.Server.ListenPort); err != nil {
		logger.Error().Err(err).Msg("server failed")
		return 1
	}

	logger.Info().Msg("server stopped")
	return 0
}

func stopServer(ctx context.Context, logger zerolog.Logger, cfg config.Config, stdout io.Writer) int {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := channel.New(cfg.Server.URL).Stop(ctx); err != nil {
		logger.Error().Err(err).Str("url", cfg.Server.URL).Msg("failed to stop server")
		fmt.Fprintf(stdout, "unable to stop server at %s\n", cfg.Server.URL)
		return 1
	}

	fmt.Fprintln(stdout, application.OKReply)
	return 0
}

// newApp builds the application around the file store and adds a forwarder
// for every integration that is configured.
func newApp(logger zerolog.Logger, cfg config.Config) (application.OrionLogger, func()) {
	opts := []application.Option{
		application.WithStrictSlugs(cfg.StrictSlug),
	}

	fw := cfg.Forwarding

	if fw.SenMLEndpointURL != "" {
		opts = append(opts, application.WithForwarder("senml", application.SenMLForwarder(fw.SenMLEndpointURL)))
	}

	if fw.ContextBrokerURL != "" {
		cb := client.NewContextBrokerClient(fw.ContextBrokerURL)
		opts = append(opts, application.WithForwarder("context-broker", application.ContextBrokerForwarder(cb)))
	}

	closeForwarders := func() {}

	if fw.MQTT.Enabled() {
		p, err := mqtt.Connect(fw.MQTT)
		if err != nil {
			logger.Error().Err(err).Str("broker", fw.MQTT.BrokerURL).Msg("mqtt forwarding disabled")
		} else {
			opts = append(opts, application.WithForwarder("mqtt", application.MQTTForwarder(p)))
			closeForwarders = func() { p.Close() }
		}
	}

	return application.New(storage.NewFileStore(cfg.DataPath), opts...), closeForwarders
}
