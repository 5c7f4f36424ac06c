package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/diwise/context-broker/pkg/ngsild/client"
	"github.com/diwise/orion-logger/domain"
	"github.com/diwise/orion-logger/internal/pkg/application/fiware"
	"github.com/diwise/orion-logger/internal/pkg/application/lwm2m"
	"github.com/diwise/orion-logger/internal/pkg/infrastructure/mqtt"
	"github.com/diwise/orion-logger/internal/pkg/infrastructure/storage"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"
)

type OrionLogger interface {
	Add(ctx context.Context, mp domain.MeasurementPoint) error
	HandleRequest(ctx context.Context, request string) Reply
}

// ForwardFunc sends a stored measurement point somewhere else.
type ForwardFunc func(ctx context.Context, mp domain.MeasurementPoint) error

type forwarder struct {
	name    string
	forward ForwardFunc
}

type orionLogger struct {
	store      storage.Store
	forwarders []forwarder
	strictSlug bool

	mu       sync.Mutex
	requests uint32
}

type Option func(*orionLogger)

func WithForwarder(name string, fn ForwardFunc) Option {
	return func(o *orionLogger) {
		o.forwarders = append(o.forwarders, forwarder{name: name, forward: fn})
	}
}

func WithStrictSlugs(strict bool) Option {
	return func(o *orionLogger) {
		o.strictSlug = strict
	}
}

var tracer = otel.Tracer("orion-logger/app")

func New(store storage.Store, opts ...Option) OrionLogger {
	o := &orionLogger{
		store: store,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Add appends the point to the store and then hands it to every forwarder.
// A failing forwarder does not stop the others and never undoes the write.
func (o *orionLogger) Add(ctx context.Context, mp domain.MeasurementPoint) error {
	var err error

	ctx, span := tracer.Start(ctx, "add-measurement-point")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	log := logging.GetFromContext(ctx).With().Str("device", mp.Device.Slug()).Logger()

	err = o.store.Append(ctx, mp)
	if err != nil {
		pointsFailed.Inc()
		err = fmt.Errorf("failed to store measurement point: %w", err)
		return err
	}

	pointsStored.Inc()
	log.Info().Str("data", mp.Data.String()).Msg("measurement point stored")

	var errs []error

	for _, f := range o.forwarders {
		if ferr := f.forward(ctx, mp); ferr != nil {
			forwardFailures.WithLabelValues(f.name).Inc()
			log.Error().Err(ferr).Str("forwarder", f.name).Msg("failed to forward measurement point")
			errs = append(errs, fmt.Errorf("%s: %w", f.name, ferr))
		}
	}

	err = errors.Join(errs...)
	if err != nil {
		return &ForwardError{Err: err}
	}

	return nil
}

// ForwardError is returned by Add when the point was stored but one or more
// forwarders failed.
type ForwardError struct {
	Err error
}

func (e *ForwardError) Error() string {
	return "measurement point stored but not forwarded: " + e.Err.Error()
}

func (e *ForwardError) Unwrap() error {
	return e.Err
}

func SenMLForwarder(url string) ForwardFunc {
	return func(ctx context.Context, mp domain.MeasurementPoint) error {
		return lwm2m.CreateAndSendAsSenML(ctx, mp, url, lwm2m.Send)
	}
}

func ContextBrokerForwarder(cbClient client.ContextBrokerClient) ForwardFunc {
	return func(ctx context.Context, mp domain.MeasurementPoint) error {
		return fiware.CreateOrUpdateDeviceMeasurement(ctx, cbClient, mp)
	}
}

func MQTTForwarder(p mqtt.Publisher) ForwardFunc {
	return p.Publish
}
