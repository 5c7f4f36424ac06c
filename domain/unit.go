package domain

import (
	"fmt"
)

// Unit is one of the SI units a measurement can be logged in.
type Unit int

const (
	Volt Unit = iota
	Ohm
	Ampere
	Watt
	Kelvin
	Second
	Kilogram
)

var unitSymbols = [...]string{
	Volt:     "V",
	Ohm:      "Ω",
	Ampere:   "A",
	Watt:     "W",
	Kelvin:   "K",
	Second:   "s",
	Kilogram: "kg",
}

var unitNames = [...]string{
	Volt:     "Volt",
	Ohm:      "Ohm",
	Ampere:   "Ampere",
	Watt:     "Watt",
	Kelvin:   "Kelvin",
	Second:   "Second",
	Kilogram: "Kilogram",
}

func Units() []Unit {
	return []Unit{Volt, Ohm, Ampere, Watt, Kelvin, Second, Kilogram}
}

// ParseUnit accepts exactly one of V, Ω, A, W, K, s or kg.
func ParseUnit(s string) (Unit, error) {
	for u, symbol := range unitSymbols {
		if s == symbol {
			return Unit(u), nil
		}
	}
	return 0, ErrInvalidUnit
}

func (u Unit) valid() bool {
	return u >= Volt && u <= Kilogram
}

func (u Unit) String() string {
	if !u.valid() {
		return fmt.Sprintf("Unit(%d)", int(u))
	}
	return unitSymbols[u]
}

func (u Unit) Name() string {
	if !u.valid() {
		return u.String()
	}
	return unitNames[u]
}

func (u Unit) MarshalText() ([]byte, error) {
	if !u.valid() {
		return nil, ErrInvalidUnit
	}
	return []byte(unitSymbols[u]), nil
}

func (u *Unit) UnmarshalText(text []byte) error {
	parsed, err := ParseUnit(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
