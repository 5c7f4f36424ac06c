package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/diwise/orion-logger/internal/pkg/application"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

var ErrUnexpectedReply = errors.New("unexpected reply")

var tracer = otel.Tracer("orion-logger/channel")

// Channel sends requests to a running logger server and returns its replies.
type Channel struct {
	url        string
	httpClient http.Client
}

func New(serverURL string) *Channel {
	return &Channel{
		url: strings.TrimSuffix(serverURL, "/") + application.RequestsPath,
		httpClient: http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *Channel) Request(ctx context.Context, data string) (string, error) {
	var err error

	ctx, span := tracer.Start(ctx, "request")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(data))
	if err != nil {
		err = fmt.Errorf("failed to create request: %w", err)
		return "", err
	}
	req.Header.Add("Content-Type", "text/plain; charset=utf-8")

	var resp *http.Response
	resp, err = c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("request failed: %w", err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("request failed, expected status code %d, got %d", http.StatusOK, resp.StatusCode)
		return "", err
	}

	var body []byte
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("failed to read reply: %w", err)
		return "", err
	}

	return string(body), nil
}

// Stop asks the server to shut down.
func (c *Channel) Stop(ctx context.Context) error {
	reply, err := c.Request(ctx, application.StopRequest)
	if err != nil {
		return err
	}

	if reply != application.OKReply {
		return fmt.Errorf("%w: %q", ErrUnexpectedReply, reply)
	}

	return nil
}
