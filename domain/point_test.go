package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestThatMeasurementPointLineHasTimestampAndData(t *testing.T) {
	is := is.New(t)

	d, _ := NewDeviceFromSlug("temp1@core-isa-000.lm-sensors")
	ml, _ := ParseMeasurementsList("3.0[V] -5[A]")
	ts, err := ParseTimestamp("1985-04-12T23:20:50.52Z")
	is.NoErr(err)

	mp, err := NewMeasurementPoint(ts, d, ml)
	is.NoErr(err)

	is.Equal(mp.Line(), "1985-04-12T23:20:50.52Z 3[V] -5[A]\n")
	is.Equal(mp.String(), "temp1@core-isa-000.lm-sensors 1985-04-12T23:20:50.52Z 3[V] -5[A]")
}

func TestThatMeasurementPointIsNormalisedToUTC(t *testing.T) {
	is := is.New(t)

	d, _ := NewDeviceFromSlug("port@node.driver")
	ml, _ := ParseMeasurementsList("1[K]")
	ts, err := ParseTimestamp("2015-06-01T12:00:00+02:00")
	is.NoErr(err)

	mp, err := NewMeasurementPoint(ts, d, ml)
	is.NoErr(err)
	is.Equal(mp.Line(), "2015-06-01T10:00:00Z 1[K]\n")
}

func TestThatInvalidMeasurementPointsAreRejected(t *testing.T) {
	is := is.New(t)

	d, _ := NewDeviceFromSlug("port@node.driver")
	ml, _ := ParseMeasurementsList("1[K]")

	_, err := NewMeasurementPoint(time.Now(), d, NewMeasurementsList())
	is.True(errors.Is(err, ErrEmptyMeasurementsList))

	_, err = NewMeasurementPoint(time.Now(), Device{}, ml)
	is.True(errors.Is(err, ErrInvalidDevice))
}

func TestThatInvalidTimestampsAreRejected(t *testing.T) {
	is := is.New(t)

	for _, s := range []string{"", "now", "1985-04-12", "1985-04-12 23:20:50Z", "1985-13-12T23:20:50Z"} {
		_, err := ParseTimestamp(s)
		is.True(errors.Is(err, ErrInvalidTimestamp))
	}
}
