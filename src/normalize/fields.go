package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
)

// -----------------------------------------------------------------------------
// Field access helpers shared by the quote, depth and history mappers.
// -----------------------------------------------------------------------------

// number parses the value at path as a finite float. Numeric strings count.
func number(data []byte, path ...string) (float64, bool) {
	value, dataType, _, err := jsonparser.Get(data, path...)
	if err != nil {
		return 0, false
	}

	var f float64
	switch dataType {
	case jsonparser.Number:
		f, err = jsonparser.ParseFloat(value)
	case jsonparser.String:
		s := strings.TrimSpace(string(value))
		if s == "" {
			return 0, false
		}
		f, err = strconv.ParseFloat(s, 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// firstNumber returns the first alias holding a finite number.
func firstNumber(obj []byte, aliases ...string) (float64, bool) {
	for _, key := range aliases {
		if f, ok := number(obj, key); ok {
			return f, true
		}
	}
	return 0, false
}

// optNumber is firstNumber as a nullable value.
func optNumber(obj []byte, aliases ...string) *float64 {
	if f, ok := firstNumber(obj, aliases...); ok {
		return &f
	}
	return nil
}

// text returns the trimmed string at path, "" when absent.
func text(data []byte, path ...string) string {
	s, err := jsonparser.GetString(data, path...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// object returns the object at path, nil when the value is anything else.
func object(data []byte, path ...string) []byte {
	value, dataType, _, err := jsonparser.Get(data, path...)
	if err != nil || dataType != jsonparser.Object {
		return nil
	}
	return value
}

// -----------------------------------------------------------------------------

// EpochToTime converts an upstream epoch. Values above 1e12 are already
// milliseconds, smaller ones are seconds.
func EpochToTime(v float64) time.Time {
	ms := v
	if v <= 1e12 {
		ms = v * 1000
	}
	return time.UnixMilli(int64(math.Round(ms))).UTC()
}
