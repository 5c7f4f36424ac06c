package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidUnit        = errors.New("invalid format or unit")
	ErrInvalidFormat      = errors.New("invalid format")
	ErrInvalidValue       = errors.New("invalid value")
	ErrInvalidMeasurement = errors.New("invalid measurement")
)

type MeasurementErrorKind int

const (
	InvalidFormat MeasurementErrorKind = iota
	InvalidValue
	InvalidUnit
)

func (k MeasurementErrorKind) sentinel() error {
	switch k {
	case InvalidValue:
		return ErrInvalidValue
	case InvalidUnit:
		return ErrInvalidUnit
	default:
		return ErrInvalidFormat
	}
}

func (k MeasurementErrorKind) String() string {
	switch k {
	case InvalidValue:
		return "Invalid value"
	case InvalidUnit:
		return "Invalid unit"
	default:
		return "Invalid format"
	}
}

// ParseMeasurementError is returned by ParseMeasurement. Err holds the
// underlying float or unit parse failure and is nil for InvalidFormat.
type ParseMeasurementError struct {
	Kind  MeasurementErrorKind
	Input string
	Err   error
}

func (e *ParseMeasurementError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
}

func (e *ParseMeasurementError) Unwrap() error {
	return e.Err
}

func (e *ParseMeasurementError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

type MeasurementsListErrorKind int

const (
	InvalidListFormat MeasurementsListErrorKind = iota
	InvalidListMeasurement
)

func (k MeasurementsListErrorKind) String() string {
	if k == InvalidListMeasurement {
		return "Invalid measurement"
	}
	return "Invalid format"
}

// ParseMeasurementsListError is returned by ParseMeasurementsList. For
// InvalidListMeasurement, Err is the *ParseMeasurementError of the first
// token that failed.
type ParseMeasurementsListError struct {
	Kind  MeasurementsListErrorKind
	Token string
	Err   *ParseMeasurementError
}

func (e *ParseMeasurementsListError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s %q: %s", e.Kind, e.Token, e.Err.Error())
}

func (e *ParseMeasurementsListError) Unwrap() error {
	if e.Err == nil {
		return nil
	}
	return e.Err
}

func (e *ParseMeasurementsListError) Is(target error) bool {
	if e.Kind == InvalidListMeasurement {
		return target == ErrInvalidMeasurement
	}
	return target == ErrInvalidFormat
}
