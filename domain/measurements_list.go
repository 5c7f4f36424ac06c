package domain

import (
	"regexp"
	"strings"
)

var measurementTokenPattern = regexp.MustCompile(`[^\[\] ]*\[[^\] ]*\]`)

// MeasurementsList is an ordered list of measurements, written as
// measurements separated by a single space, e.g. "3[V] -5[A]".
type MeasurementsList struct {
	list []Measurement
}

func NewMeasurementsList(measurements ...Measurement) MeasurementsList {
	list := make([]Measurement, len(measurements))
	copy(list, measurements)

	return MeasurementsList{
		list: list,
	}
}

// ParseMeasurementsList parses a space separated list of measurements.
//
// A *ParseMeasurementsListError of kind InvalidListFormat is returned if s
// does not contain anything that looks like value[unit]. Otherwise s is split
// on every single space and each token is parsed with ParseMeasurement. The
// first token that fails is reported as InvalidListMeasurement.
func ParseMeasurementsList(s string) (MeasurementsList, error) {
	if !measurementTokenPattern.MatchString(s) {
		return MeasurementsList{}, &ParseMeasurementsListError{Kind: InvalidListFormat}
	}

	tokens := strings.Split(s, " ")
	list := make([]Measurement, 0, len(tokens))

	for _, token := range tokens {
		m, err := ParseMeasurement(token)
		if err != nil {
			return MeasurementsList{}, &ParseMeasurementsListError{
				Kind:  InvalidListMeasurement,
				Token: token,
				Err:   err.(*ParseMeasurementError),
			}
		}

		list = append(list, m)
	}

	return MeasurementsList{list: list}, nil
}

func (ml MeasurementsList) Len() int {
	return len(ml.list)
}

func (ml MeasurementsList) IsEmpty() bool {
	return len(ml.list) == 0
}

func (ml MeasurementsList) Measurements() []Measurement {
	list := make([]Measurement, len(ml.list))
	copy(list, ml.list)
	return list
}

func (ml MeasurementsList) String() string {
	var sb strings.Builder

	for i, m := range ml.list {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(m.String())
	}

	return sb.String()
}
