package domain

import (
	"errors"
	"math"
	"regexp"
	"strconv"
)

var (
	measurementPattern = regexp.MustCompile(`^([^\[\]]*)\[([^\[\]]*)\]$`)

	// Decimal notation only. Hex floats and digit separators are rejected.
	valuePattern = regexp.MustCompile(`^(?:[+-]?(?:(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?|(?i:inf|infinity))|(?i:nan))$`)
)

// Measurement is a single value tagged with a unit, written as value[unit]
type Measurement struct {
	value float64
	unit  Unit
}

func NewMeasurement(value float64, unit Unit) Measurement {
	return Measurement{
		value: value,
		unit:  unit,
	}
}

// ParseMeasurement parses a measurement such as "3.0[V]" or "-4.1[A]".
//
// The returned *ParseMeasurementError has kind InvalidFormat if s is not of
// the form value[unit], InvalidValue if value is not a floating point number
// and InvalidUnit if unit is not a known unit symbol. Checks are made in
// that order.
func ParseMeasurement(s string) (Measurement, error) {
	m := measurementPattern.FindStringSubmatch(s)
	if m == nil {
		return Measurement{}, &ParseMeasurementError{Kind: InvalidFormat, Input: s}
	}

	value, err := parseValue(m[1])
	if err != nil {
		return Measurement{}, &ParseMeasurementError{Kind: InvalidValue, Input: s, Err: err}
	}

	unit, err := ParseUnit(m[2])
	if err != nil {
		return Measurement{}, &ParseMeasurementError{Kind: InvalidUnit, Input: s, Err: err}
	}

	return NewMeasurement(value, unit), nil
}

// parseValue accepts decimal numbers and the inf, infinity and nan keywords.
// Literals too large for a float64 become ±Inf.
func parseValue(s string) (float64, error) {
	if !valuePattern.MatchString(s) {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: s, Err: strconv.ErrSyntax}
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}

	return value, nil
}

func (m Measurement) Value() float64 {
	return m.value
}

func (m Measurement) Unit() Unit {
	return m.unit
}

func (m Measurement) String() string {
	return formatValue(m.value) + "[" + m.unit.String() + "]"
}

func formatValue(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "NaN"
	}

	return strconv.FormatFloat(v, 'f', -1, 64)
}
