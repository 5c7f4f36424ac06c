package fiware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diwise/context-broker/pkg/ngsild/client"
	ngsierrors "github.com/diwise/context-broker/pkg/ngsild/errors"
	"github.com/diwise/context-broker/pkg/ngsild/types"
	"github.com/diwise/context-broker/pkg/ngsild/types/entities"
	. "github.com/diwise/context-broker/pkg/ngsild/types/entities/decorators"
	"github.com/diwise/context-broker/pkg/ngsild/types/properties"
	"github.com/diwise/orion-logger/domain"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"
)

const (
	DeviceMeasurementTypeName string = "DeviceMeasurement"
	DeviceMeasurementIDPrefix string = "urn:ngsi-ld:DeviceMeasurement:"
)

var tracer = otel.Tracer("orion-logger/fiware")

func EntityID(d domain.Device) string {
	return DeviceMeasurementIDPrefix + d.Slug()
}

func CreateOrUpdateDeviceMeasurement(ctx context.Context, cbClient client.ContextBrokerClient, mp domain.MeasurementPoint) error {
	var err error

	ctx, span := tracer.Start(ctx, "create-device-measurement")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	_, ctx, logger := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

	headers := map[string][]string{"Content-Type": {"application/ld+json"}}
	decorators := Decorators(mp)
	entityID := EntityID(mp.Device)

	var fragment types.EntityFragment
	fragment, err = entities.NewFragment(decorators...)
	if err != nil {
		err = fmt.Errorf("failed to create entity fragment: %w", err)
		return err
	}

	_, err = cbClient.MergeEntity(ctx, entityID, fragment, headers)
	if err == nil {
		logger.Info().Msgf("updated entity %s", entityID)
		return nil
	}

	if !errors.Is(err, ngsierrors.ErrNotFound) {
		logger.Error().Err(err).Msg("failed to merge entity")
	}

	var entity types.Entity
	entity, err = entities.New(entityID, DeviceMeasurementTypeName, decorators...)
	if err != nil {
		err = fmt.Errorf("failed to create new entity: %w", err)
		return err
	}

	_, err = cbClient.CreateEntity(ctx, entity, headers)
	if err != nil {
		logger.Error().Err(err).Msg("failed to post entity to context broker")
		return err
	}

	logger.Info().Msgf("created entity %s", entityID)

	return nil
}

// Decorators returns the entity properties for a measurement point. Each
// measurement becomes a Number property named after the quantity it
// measures. Repeated quantities get a _2, _3, ... suffix in list order.
func Decorators(mp domain.MeasurementPoint) []entities.EntityDecoratorFunc {
	observedAt := mp.Timestamp.UTC().Format(time.RFC3339Nano)

	decorators := []entities.EntityDecoratorFunc{
		entities.DefaultContext(),
		Text("port", mp.Device.Port()),
		Text("node", mp.Device.Node()),
		Text("driver", mp.Device.Driver()),
		DateTime(properties.DateObserved, observedAt),
	}

	return append(decorators, createFragmentsFromMeasurements(mp.Data.Measurements(), observedAt)...)
}

func createFragmentsFromMeasurements(measurements []domain.Measurement, timestamp string) []entities.EntityDecoratorFunc {
	readings := []entities.EntityDecoratorFunc{}

	for i, name := range PropertyNames(measurements) {
		m := measurements[i]
		readings = append(readings, Number(
			name,
			m.Value(),
			properties.UnitCode(unitCodes[m.Unit()]),
			properties.ObservedAt(timestamp),
		))
	}

	return readings
}

func PropertyNames(measurements []domain.Measurement) []string {
	names := make([]string, 0, len(measurements))
	seen := map[domain.Unit]int{}

	for _, m := range measurements {
		seen[m.Unit()]++
		name := quantityNames[m.Unit()]
		if n := seen[m.Unit()]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		names = append(names, name)
	}

	return names
}

// UN/CEFACT common codes
var unitCodes map[domain.Unit]string = map[domain.Unit]string{
	domain.Volt:     "VLT",
	domain.Ohm:      "OHM",
	domain.Ampere:   "AMP",
	domain.Watt:     "WTT",
	domain.Kelvin:   "KEL",
	domain.Second:   "SEC",
	domain.Kilogram: "KGM",
}

var quantityNames map[domain.Unit]string = map[domain.Unit]string{
	domain.Volt:     "voltage",
	domain.Ohm:      "resistance",
	domain.Ampere:   "current",
	domain.Watt:     "power",
	domain.Kelvin:   "temperature",
	domain.Second:   "duration",
	domain.Kilogram: "mass",
}
