package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidDevice         = errors.New("invalid device")
	ErrInvalidTimestamp      = errors.New("invalid timestamp")
	ErrEmptyMeasurementsList = errors.New("measurements list is empty")
)

// MeasurementPoint is one line in a device data file.
type MeasurementPoint struct {
	Timestamp time.Time
	Device    Device
	Data      MeasurementsList
}

func NewMeasurementPoint(timestamp time.Time, device Device, data MeasurementsList) (MeasurementPoint, error) {
	if device.IsZero() {
		return MeasurementPoint{}, ErrInvalidDevice
	}

	if data.IsEmpty() {
		return MeasurementPoint{}, ErrEmptyMeasurementsList
	}

	return MeasurementPoint{
		Timestamp: timestamp.UTC(),
		Device:    device,
		Data:      data,
	}, nil
}

// ParseTimestamp parses an IETF RFC3339 timestamp and returns it in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidTimestamp, err.Error())
	}
	return t.UTC(), nil
}

// Line returns the text appended to the device data file for this point.
func (mp MeasurementPoint) Line() string {
	var sb strings.Builder
	sb.Grow(80)

	sb.WriteString(mp.Timestamp.UTC().Format(time.RFC3339Nano))
	sb.WriteByte(' ')
	sb.WriteString(mp.Data.String())
	sb.WriteByte('\n')

	return sb.String()
}

func (mp MeasurementPoint) String() string {
	return fmt.Sprintf("%s %s", mp.Device.Slug(), strings.TrimSuffix(mp.Line(), "\n"))
}
