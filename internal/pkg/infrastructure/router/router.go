package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/diwise/orion-logger/internal/pkg/application"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
)

const (
	maxRequestSize  int64         = 64 * 1024
	shutdownTimeout time.Duration = 5 * time.Second
)

var tracer = otel.Tracer("orion-logger/router")

type Router interface {
	Start(ctx context.Context, port string) error
}

type routerStruct struct {
	router chi.Router
	app    application.OrionLogger
	log    zerolog.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

func SetupRouter(chiRouter chi.Router, app application.OrionLogger, log zerolog.Logger) *routerStruct {
	r := &routerStruct{
		router: chiRouter,
		app:    app,
		log:    log,
		stop:   make(chan struct{}),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(requestsTotal)
	registry.MustRegister(application.MetricsCollectors()...)

	chiRouter.Use(middleware.Logger)
	chiRouter.Get("/health", r.health)
	chiRouter.Post(application.RequestsPath, r.request)
	chiRouter.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return r
}

// Start serves requests until ctx is cancelled or a stop request has been
// answered, and then shuts the server down.
func (r *routerStruct) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: r.router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	r.log.Info().Str("port", port).Msg("starting to listen for connections")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		r.log.Info().Msg("context done, shutting down")
	case <-r.stop:
		r.log.Info().Msg("stop requested, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (r *routerStruct) Stopped() <-chan struct{} {
	return r.stop
}

func (router *routerStruct) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (router *routerStruct) request(w http.ResponseWriter, r *http.Request) {
	var err error

	ctx, span := tracer.Start(r.Context(), "handle-request")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	_, ctx, log := o11y.AddTraceIDToLoggerAndStoreInContext(span, router.log, ctx)

	var body []byte
	body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn().Int64("limit", tooLarge.Limit).Msg("request body too large")
			requestsTotal.WithLabelValues("rejected").Inc()
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}

		log.Error().Err(err).Msg("failed to read request body")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	request := string(body)
	reply := router.app.HandleRequest(ctx, request)

	requestsTotal.WithLabelValues(commandOf(request)).Inc()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(reply.Text))

	if reply.Stop {
		router.stopOnce.Do(func() { close(router.stop) })
	}
}

func commandOf(request string) string {
	if !strings.HasPrefix(request, application.ProtocolVersion+" ") {
		return "other"
	}

	fields := strings.Fields(strings.TrimPrefix(request, application.ProtocolVersion))
	if len(fields) == 0 {
		return "other"
	}

	switch fields[0] {
	case "STOP", "ADD":
		return strings.ToLower(fields[0])
	default:
		return "other"
	}
}
