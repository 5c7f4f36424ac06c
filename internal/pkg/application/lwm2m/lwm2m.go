package lwm2m

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/diwise/orion-logger/domain"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/farshidtz/senml/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

var tlsSkipVerify bool

func init() {
	tlsSkipVerify = env.GetVariableOrDefault(zerolog.Logger{}, "TLS_SKIP_VERIFY", "0") == "1"
}

var tracer = otel.Tracer("orion-logger/lwm2m")

// SenML unit symbols as registered in RFC 8428
var senmlUnits = map[domain.Unit]string{
	domain.Volt:     "V",
	domain.Ohm:      "Ohm",
	domain.Ampere:   "A",
	domain.Watt:     "W",
	domain.Kelvin:   "K",
	domain.Second:   "s",
	domain.Kilogram: "kg",
}

func CreateAndSendAsSenML(ctx context.Context, mp domain.MeasurementPoint, url string, sender SenderFunc) error {
	log := logging.GetFromContext(ctx).With().Str("device", mp.Device.Slug()).Logger()

	pack := NewPack(mp)

	err := sender(ctx, url, pack)
	if err != nil {
		log.Error().Err(err).Msg("could not send pack")
		return err
	}

	log.Debug().Int("records", len(pack)).Msg("pack sent")

	return nil
}

// NewPack converts a measurement point into a SenML pack. The first record
// carries the base name and time together with the device slug, followed by
// one record per measurement named after its position in the list.
func NewPack(mp domain.MeasurementPoint) senml.Pack {
	t := float64(mp.Timestamp.UnixNano()) / 1e9

	p := senml.Pack{
		senml.Record{
			BaseName:    mp.Device.Slug() + "/",
			BaseTime:    t,
			Name:        "device",
			StringValue: mp.Device.Slug(),
		},
	}

	for i, m := range mp.Data.Measurements() {
		p = append(p, newRec(strconv.Itoa(i), m.Value(), senmlUnits[m.Unit()]))
	}

	return p
}

func newRec(name string, v float64, u string) senml.Record {
	return senml.Record{
		Name:  name,
		Value: &v,
		Unit:  u,
	}
}

type SenderFunc = func(context.Context, string, senml.Pack) error

func Send(ctx context.Context, url string, pack senml.Pack) error {
	var err error

	ctx, span := tracer.Start(ctx, "send-pack")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	var httpClient http.Client

	if tlsSkipVerify {
		customTransport := http.DefaultTransport.(*http.Transport).Clone()
		customTransport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		httpClient = http.Client{
			Transport: otelhttp.NewTransport(customTransport),
		}
	} else {
		httpClient = http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	var b []byte
	b, err = json.Marshal(pack)
	if err != nil {
		return err
	}

	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(b))
	if err != nil {
		return err
	}

	req.Header.Add("Content-Type", "application/senml+json")

	var resp *http.Response
	resp, err = httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		err = fmt.Errorf("unexpected response code %d", resp.StatusCode)
	}

	return err
}
