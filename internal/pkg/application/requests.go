package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diwise/orion-logger/domain"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

const (
	// RequestsPath is where the logger server accepts requests.
	RequestsPath string = "/api/requests"

	ProtocolVersion string = "LOGGER/1.0"

	StopRequest string = ProtocolVersion + " STOP"
	OKReply     string = ProtocolVersion + " OK"

	addCommand string = ProtocolVersion + " ADD "
	errReply   string = ProtocolVersion + " ERR "
	nowKeyword string = "now"
)

type Reply struct {
	Text string
	Stop bool
}

// HandleRequest answers one request of the logger request/reply exchange.
//
//	LOGGER/1.0 STOP                                -> LOGGER/1.0 OK (and stop)
//	LOGGER/1.0 ADD <device> <timestamp|now> <data> -> LOGGER/1.0 OK | LOGGER/1.0 ERR <reason>
//	anything else                                  -> <request> -> Reply #<n>
func (o *orionLogger) HandleRequest(ctx context.Context, request string) Reply {
	log := logging.GetFromContext(ctx)
	log.Debug().Str("request", request).Msg("received request")

	if request == StopRequest {
		return Reply{Text: OKReply, Stop: true}
	}

	n := o.nextRequestNumber()

	if strings.HasPrefix(request, addCommand) {
		return Reply{Text: o.handleAdd(ctx, strings.TrimPrefix(request, addCommand))}
	}

	return Reply{Text: fmt.Sprintf("%s -> Reply #%d", request, n)}
}

func (o *orionLogger) nextRequestNumber() uint32 {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.requests++
	return o.requests
}

func (o *orionLogger) handleAdd(ctx context.Context, args string) string {
	parts := strings.SplitN(args, " ", 3)
	if len(parts) != 3 {
		return errReply + "INVALID_REQUEST"
	}

	timestamp := parts[1]
	if timestamp == nowKeyword {
		timestamp = ""
	}

	mp, err := BuildPoint(parts[0], parts[2], timestamp, time.Now, o.strictSlug)
	if err != nil {
		return errReply + ReasonFor(err)
	}

	err = o.Add(ctx, mp)

	var fwdErr *ForwardError
	if err != nil && !errors.As(err, &fwdErr) {
		return errReply + ReasonFor(err)
	}

	return OKReply
}

// ReasonFor maps an error from BuildPoint or Add to a short reason code.
func ReasonFor(err error) string {
	var listErr *domain.ParseMeasurementsListError

	switch {
	case errors.Is(err, domain.ErrInvalidTimestamp):
		return "INVALID_TIMESTAMP"
	case errors.As(err, &listErr), errors.Is(err, domain.ErrEmptyMeasurementsList):
		return "INVALID_VALUE"
	case errors.Is(err, domain.ErrInvalidDevice):
		return "INVALID_DEVICE"
	default:
		return "STORE_FAILED"
	}
}
