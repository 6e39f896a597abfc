package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrParseTimeSpec is returned when a textual time spec cannot be parsed.
var ErrParseTimeSpec = errors.New("invalid time spec")

// TimeSpec is a musical-style duration: hours, minutes, seconds and a
// fractional-second remainder, parsed from and displayed as a
// "H:M:S.f" / "M:S.f" / "S.f" / ".f" string.
type TimeSpec struct {
	Hours    int
	Minutes  int
	Seconds  int
	Fraction float64 // in [0, 1)
}

// Duration converts the spec to a time.Duration.
func (t TimeSpec) Duration() time.Duration {
	total := time.Duration(t.Hours)*time.Hour +
		time.Duration(t.Minutes)*time.Minute +
		time.Duration(t.Seconds)*time.Second +
		time.Duration(t.Fraction*float64(time.Second))
	return total
}

// String renders the spec back to its textual form. Leading zero
// components are omitted unless a larger component is present; once a
// component is shown, every smaller component is zero-padded.
func (t TimeSpec) String() string {
	fracStr := formatFraction(t.Fraction)

	switch {
	case t.Hours != 0:
		return fmt.Sprintf("%d:%02d:%02d%s", t.Hours, t.Minutes, t.Seconds, fracStr)
	case t.Minutes != 0:
		return fmt.Sprintf("%d:%02d%s", t.Minutes, t.Seconds, fracStr)
	case t.Seconds != 0:
		return fmt.Sprintf("%d%s", t.Seconds, fracStr)
	default:
		if fracStr == "" {
			return "0"
		}
		return fracStr
	}
}

func formatFraction(f float64) string {
	if f <= 0 {
		return ""
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	// strip the "0" prefix of "0.xxx", keep the dot
	s = strings.TrimPrefix(s, "0")
	return s
}

// ParseTimeSpec parses "H:M:S.f", "M:S.f", "S.f" or ".f" textual forms.
// Rejects more than three colon-separated parts, or more than one dot.
func ParseTimeSpec(s string) (TimeSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TimeSpec{}, errors.Wrap(ErrParseTimeSpec, "empty")
	}

	if strings.Count(s, ".") > 1 {
		return TimeSpec{}, errors.Wrap(ErrParseTimeSpec, "multiple fractional components")
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return TimeSpec{}, errors.Wrap(ErrParseTimeSpec, "too many colon-separated components")
	}

	var spec TimeSpec
	secField := parts[len(parts)-1]

	secInt, frac, err := splitSecondsField(secField)
	if err != nil {
		return TimeSpec{}, err
	}
	spec.Seconds = secInt
	spec.Fraction = frac

	if len(parts) >= 2 {
		m, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-2]))
		if err != nil {
			return TimeSpec{}, errors.Wrapf(ErrParseTimeSpec, "invalid minutes %q", parts[len(parts)-2])
		}
		spec.Minutes = m
	}
	if len(parts) == 3 {
		h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return TimeSpec{}, errors.Wrapf(ErrParseTimeSpec, "invalid hours %q", parts[0])
		}
		spec.Hours = h
	}

	return spec, nil
}

func splitSecondsField(field string) (int, float64, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0, 0, errors.Wrap(ErrParseTimeSpec, "empty seconds component")
	}

	dot := strings.IndexByte(field, '.')
	if dot < 0 {
		v, err := strconv.Atoi(field)
		if err != nil {
			return 0, 0, errors.Wrapf(ErrParseTimeSpec, "invalid seconds %q", field)
		}
		return v, 0, nil
	}

	intPart := field[:dot]
	fracPart := field[dot:]

	var secInt int
	if intPart != "" {
		v, err := strconv.Atoi(intPart)
		if err != nil {
			return 0, 0, errors.Wrapf(ErrParseTimeSpec, "invalid seconds %q", field)
		}
		secInt = v
	}

	frac, err := strconv.ParseFloat("0"+fracPart, 64)
	if err != nil {
		return 0, 0, errors.Wrapf(ErrParseTimeSpec, "invalid fraction %q", field)
	}

	return secInt, frac, nil
}
