package application

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/diwise/orion-logger/domain"
	"github.com/diwise/orion-logger/internal/pkg/infrastructure/storage"
	testutils "github.com/diwise/service-chassis/pkg/test/http"
	"github.com/diwise/service-chassis/pkg/test/http/expects"
	"github.com/diwise/service-chassis/pkg/test/http/response"
	"github.com/matryer/is"
)

var Expects = testutils.Expects
var Returns = testutils.Returns
var method = expects.RequestMethod

func TestThatAddStoresThePoint(t *testing.T) {
	is := is.New(t)

	store := storage.NewFileStore(t.TempDir())
	app := New(store)

	mp := newPoint(is, "port@node.driver", "3.0[V] -5[A]")
	is.NoErr(app.Add(context.Background(), mp))

	b, err := os.ReadFile(store.PathFor(mp))
	is.NoErr(err)
	is.Equal(string(b), "2015-08-20T10:00:00Z 3[V] -5[A]\n")
}

func TestThatForwardersAreCalledAfterStore(t *testing.T) {
	is := is.New(t)

	store := &storeMock{}
	var forwarded []string

	app := New(store,
		WithForwarder("first", func(ctx context.Context, mp domain.MeasurementPoint) error {
			is.Equal(len(store.points), 1) // the point must be stored before forwarding
			forwarded = append(forwarded, "first")
			return nil
		}),
		WithForwarder("second", func(ctx context.Context, mp domain.MeasurementPoint) error {
			forwarded = append(forwarded, "second")
			return nil
		}),
	)

	is.NoErr(app.Add(context.Background(), newPoint(is, "port@node.driver", "1[W]")))
	is.Equal(forwarded, []string{"first", "second"})
}

func TestThatFailingForwarderDoesNotStopOthers(t *testing.T) {
	is := is.New(t)

	store := &storeMock{}
	called := false
	boom := errors.New("boom")

	app := New(store,
		WithForwarder("failing", func(context.Context, domain.MeasurementPoint) error { return boom }),
		WithForwarder("working", func(context.Context, domain.MeasurementPoint) error { called = true; return nil }),
	)

	err := app.Add(context.Background(), newPoint(is, "port@node.driver", "1[W]"))

	var fwdErr *ForwardError
	is.True(errors.As(err, &fwdErr))
	is.True(errors.Is(err, boom))
	is.True(called)
	is.Equal(len(store.points), 1) // the point stays stored
}

func TestThatStoreFailureSkipsForwarders(t *testing.T) {
	is := is.New(t)

	store := &storeMock{err: errors.New("disk full")}
	called := false

	app := New(store, WithForwarder("fw", func(context.Context, domain.MeasurementPoint) error { called = true; return nil }))

	err := app.Add(context.Background(), newPoint(is, "port@node.driver", "1[W]"))
	is.True(err != nil)
	is.True(!called)
}

func TestThatSenMLForwarderPostsToEndpoint(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodPost),
		),
		Returns(
			response.Code(http.StatusCreated),
			response.Body([]byte("")),
		),
	)

	app := New(&storeMock{}, WithForwarder("senml", SenMLForwarder(s.URL())))
	is.NoErr(app.Add(context.Background(), newPoint(is, "port@node.driver", "1[W]")))
}

func TestBuildPoint(t *testing.T) {
	is := is.New(t)

	mp, err := BuildPoint("port@node.driver", "3.0[V] -5[A]", "1985-04-12T23:20:50.52Z", time.Now, false)
	is.NoErr(err)
	is.Equal(mp.Device.Slug(), "port@node.driver")
	is.Equal(mp.Line(), "1985-04-12T23:20:50.52Z 3[V] -5[A]\n")

	fixed := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	mp, err = BuildPoint("port@node.driver", "1[K]", "", func() time.Time { return fixed }, false)
	is.NoErr(err)
	is.Equal(mp.Timestamp, fixed)
}

func TestThatBuildPointReportsTimestampThenValueThenDevice(t *testing.T) {
	is := is.New(t)

	_, err := BuildPoint("bad$device", "garbage", "yesterday", time.Now, false)
	is.Equal(ReasonFor(err), "INVALID_TIMESTAMP")

	_, err = BuildPoint("bad$device", "garbage", "", time.Now, false)
	is.Equal(ReasonFor(err), "INVALID_VALUE")

	_, err = BuildPoint("bad$device", "3[V]", "", time.Now, false)
	is.Equal(ReasonFor(err), "INVALID_DEVICE")
}

func TestThatStrictSlugsAreHonoured(t *testing.T) {
	is := is.New(t)

	_, err := BuildPoint("port@node$driver", "3[V]", "", time.Now, false)
	is.NoErr(err)

	_, err = BuildPoint("port@node$driver", "3[V]", "", time.Now, true)
	is.True(errors.Is(err, domain.ErrInvalidDevice))
}

func TestThatStopRequestIsAcknowledged(t *testing.T) {
	is := is.New(t)

	app := New(&storeMock{})
	reply := app.HandleRequest(context.Background(), "LOGGER/1.0 STOP")

	is.Equal(reply.Text, "LOGGER/1.0 OK")
	is.True(reply.Stop)
}

func TestThatUnknownRequestsAreEchoedAndCounted(t *testing.T) {
	is := is.New(t)

	app := New(&storeMock{})
	ctx := context.Background()

	is.Equal(app.HandleRequest(ctx, "Request #1").Text, "Request #1 -> Reply #1")
	is.Equal(app.HandleRequest(ctx, "hello").Text, "hello -> Reply #2")
	is.True(!app.HandleRequest(ctx, "LOGGER/1.0 stop").Stop) // commands are case sensitive
}

func TestThatAddRequestStoresThePoint(t *testing.T) {
	is := is.New(t)

	store := &storeMock{}
	app := New(store)
	ctx := context.Background()

	reply := app.HandleRequest(ctx, "LOGGER/1.0 ADD port@node.driver 2015-08-20T10:00:00Z 3.0[V] -5[A]")
	is.Equal(reply.Text, "LOGGER/1.0 OK")
	is.Equal(len(store.points), 1)
	is.Equal(store.points[0].Data.String(), "3[V] -5[A]")

	reply = app.HandleRequest(ctx, "LOGGER/1.0 ADD port@node.driver now 1[s]")
	is.Equal(reply.Text, "LOGGER/1.0 OK")
	is.Equal(len(store.points), 2)
}

func TestThatInvalidAddRequestsAreRejected(t *testing.T) {
	is := is.New(t)

	store := &storeMock{}
	app := New(store)
	ctx := context.Background()

	for request, reason := range map[string]string{
		"LOGGER/1.0 ADD port@node.driver now":             "INVALID_REQUEST",
		"LOGGER/1.0 ADD port@node.driver tomorrow 3[V]":   "INVALID_TIMESTAMP",
		"LOGGER/1.0 ADD port@node.driver now 3V":          "INVALID_VALUE",
		"LOGGER/1.0 ADD port@node.driver now 3[V]  4[A]":  "INVALID_VALUE",
		"LOGGER/1.0 ADD port.node@driver now 3[V]":        "INVALID_DEVICE",
		"LOGGER/1.0 ADD port@node.driver.x now value[kg]": "INVALID_VALUE",
	} {
		reply := app.HandleRequest(ctx, request)
		is.True(strings.HasSuffix(reply.Text, "ERR "+reason)) // unexpected reply
	}

	is.Equal(len(store.points), 0)
}

type storeMock struct {
	mu     sync.Mutex
	points []domain.MeasurementPoint
	err    error
}

func (s *storeMock) Append(ctx context.Context, mp domain.MeasurementPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	s.points = append(s.points, mp)
	return nil
}

func newPoint(is *is.I, slug, value string) domain.MeasurementPoint {
	mp, err := BuildPoint(slug, value, "2015-08-20T10:00:00Z", time.Now, false)
	is.NoErr(err)
	return mp
}
