// Package units converts between typed exercise quantities and the legacy
// display strings ("90 сек", "70 кг") some API consumers still send and expect.
package units

import (
	"strconv"
	"strings"
)

// Unit is the implicit unit of a numeric exercise field.
type Unit string

const (
	Minutes   Unit = "мин"
	Seconds   Unit = "сек"
	Kilograms Unit = "кг"
)

// ToNumber parses "90 сек" into 90. Empty or malformed input yields nil.
func ToNumber(text string, unit Unit) *int {
	s, ok := strip(text, unit)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// ToString formats a value as "{value} {unit}". Nil stays nil.
func ToString(value *int, unit Unit) *string {
	if value == nil {
		return nil
	}
	s := strconv.Itoa(*value) + " " + string(unit)
	return &s
}

// ToFloat parses "72.5 кг" into 72.5. Empty or malformed input yields nil.
func ToFloat(text string, unit Unit) *float64 {
	s, ok := strip(text, unit)
	if !ok {
		return nil
	}
	// A decimal comma is common in hand-typed weights.
	s = strings.Replace(s, ",", ".", 1)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// FloatToString formats with the shortest representation that parses back
// to the same float.
func FloatToString(value *float64, unit Unit) *string {
	if value == nil {
		return nil
	}
	s := strconv.FormatFloat(*value, 'f', -1, 64) + " " + string(unit)
	return &s
}

// Parse reads text in whichever unit is given and never fails. Used for
// nullable request fields where nil input means "not provided".
func Parse(text *string, unit Unit) *int {
	if text == nil {
		return nil
	}
	return ToNumber(*text, unit)
}

// ParseFloat is the float flavour of Parse.
func ParseFloat(text *string, unit Unit) *float64 {
	if text == nil {
		return nil
	}
	return ToFloat(*text, unit)
}

func strip(text string, unit Unit) (string, bool) {
	s := strings.TrimSpace(text)
	s = strings.TrimSuffix(s, string(unit))
	s = strings.TrimSpace(s)
	return s, s != ""
}
