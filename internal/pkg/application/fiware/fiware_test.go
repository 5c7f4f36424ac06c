package fiware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/diwise/context-broker/pkg/ngsild/client"
	"github.com/diwise/context-broker/pkg/ngsild/types/entities"
	"github.com/diwise/orion-logger/domain"
	"github.com/matryer/is"
)

func TestThatRepeatedQuantitiesGetSuffixes(t *testing.T) {
	is := is.New(t)

	ml, err := domain.ParseMeasurementsList("3[V] 1[A] 4[V] 5[V] 300[K]")
	is.NoErr(err)

	is.Equal(PropertyNames(ml.Measurements()), []string{"voltage", "current", "voltage_2", "voltage_3", "temperature"})
}

func TestThatEntityContainsMeasurementsAndDeviceParts(t *testing.T) {
	is := is.New(t)

	mp := newPoint(is, "temp1@core-isa-000.lm-sensors", "3.5[V] 0.25[A]")

	entity, err := entities.New(EntityID(mp.Device), DeviceMeasurementTypeName, Decorators(mp)...)
	is.NoErr(err)

	b, err := json.Marshal(entity)
	is.NoErr(err)

	body := string(b)
	is.True(strings.Contains(body, "urn:ngsi-ld:DeviceMeasurement:temp1@core-isa-000.lm-sensors"))
	is.True(strings.Contains(body, `"voltage"`))
	is.True(strings.Contains(body, `"current"`))
	is.True(strings.Contains(body, `"VLT"`))
	is.True(strings.Contains(body, "lm-sensors"))
}

func TestThatEntityIsCreatedWhenMergeFindsNothing(t *testing.T) {
	is := is.New(t)

	var mu sync.Mutex
	var posted string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		if r.Method == http.MethodPost {
			b, _ := io.ReadAll(r.Body)
			posted = string(b)
			w.WriteHeader(http.StatusCreated)
			return
		}

		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	cb := client.NewContextBrokerClient(ts.URL)
	mp := newPoint(is, "port@node.driver", "3[V]")

	_ = CreateOrUpdateDeviceMeasurement(context.Background(), cb, mp)

	mu.Lock()
	defer mu.Unlock()
	is.True(strings.Contains(posted, EntityID(mp.Device))) // entity should have been posted
}

func newPoint(is *is.I, slug, value string) domain.MeasurementPoint {
	d, ok := domain.NewDeviceFromSlug(slug)
	is.True(ok)
	ml, err := domain.ParseMeasurementsList(value)
	is.NoErr(err)
	ts, err := domain.ParseTimestamp("2023-08-27T22:08:00Z")
	is.NoErr(err)
	mp, err := domain.NewMeasurementPoint(ts, d, ml)
	is.NoErr(err)
	return mp
}
