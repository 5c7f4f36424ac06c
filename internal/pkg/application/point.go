package application

import (
	"time"

	"github.com/diwise/orion-logger/domain"
)

// BuildPoint validates the raw arguments of an add request and returns the
// measurement point to store. An empty timestamp means that now is used.
// The timestamp is checked first, then the value and last the device, so
// that the first reported error is stable for a given input.
func BuildPoint(deviceSlug, value, timestamp string, now func() time.Time, strictSlug bool) (domain.MeasurementPoint, error) {
	var ts time.Time

	if timestamp != "" {
		var err error
		ts, err = domain.ParseTimestamp(timestamp)
		if err != nil {
			return domain.MeasurementPoint{}, err
		}
	} else {
		ts = now()
	}

	data, err := domain.ParseMeasurementsList(value)
	if err != nil {
		return domain.MeasurementPoint{}, err
	}

	parse := domain.NewDeviceFromSlug
	if strictSlug {
		parse = domain.NewDeviceFromStrictSlug
	}

	device, ok := parse(deviceSlug)
	if !ok {
		return domain.MeasurementPoint{}, domain.ErrInvalidDevice
	}

	return domain.NewMeasurementPoint(ts, device, data)
}
