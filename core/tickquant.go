package core

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrParseTickQuant is returned when a textual tick-quant cannot be parsed.
var ErrParseTickQuant = errors.New("invalid tick quant")

// TickQuant is a musical-style quantisation window: a period of n ticks
// with an offset inside that period. It is used to align tick-based events
// (script start times, animation start times, repeating triggers) to a
// regular grid instead of firing on an arbitrary tick.
type TickQuant struct {
	Period uint32
	Offset uint32
}

// Apply shifts t by Offset and rounds the result down to a multiple of
// Period: (t+Offset) - (t+Offset)%Period.
func (q TickQuant) Apply(t uint64) uint64 {
	if q.Period == 0 {
		return t + uint64(q.Offset)
	}
	shifted := t + uint64(q.Offset)
	return shifted - (shifted % uint64(q.Period))
}

// Convert returns how many full quanta have elapsed at or before t.
func (q TickQuant) Convert(t uint64) uint64 {
	if q.Period == 0 {
		return t + uint64(q.Offset)
	}
	return (t + uint64(q.Offset)) / uint64(q.Period)
}

// Check reports whether t falls exactly on the quant's grid.
func (q TickQuant) Check(t uint64) bool {
	if q.Period == 0 {
		return true
	}
	return (t+uint64(q.Offset))%uint64(q.Period) == 0
}

// String renders the quant in "n" or "n+offset" form. It never emits
// "n-offset": Offset is unsigned, so a quant parsed from "n-offset" is
// stored with its offset folded into the period and prints as "n+folded".
func (q TickQuant) String() string {
	switch {
	case q.Offset == 0:
		return strconv.FormatUint(uint64(q.Period), 10)
	default:
		return strconv.FormatUint(uint64(q.Period), 10) + "+" + strconv.FormatUint(uint64(q.Offset), 10)
	}
}

// ParseTickQuant parses "n", "n+offset" textual tick-quant forms.
// Negative offsets are written "n-offset" but always normalize to a
// non-negative Offset stored modulo the period, since TickQuant.Offset is
// unsigned; a negative offset is folded into the period window.
func ParseTickQuant(s string) (TickQuant, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TickQuant{}, errors.Wrap(ErrParseTickQuant, "empty")
	}

	sign := int64(1)
	splitIdx := -1
	for i := 1; i < len(s); i++ {
		if s[i] == '+' || s[i] == '-' {
			splitIdx = i
			if s[i] == '-' {
				sign = -1
			}
			break
		}
	}

	periodStr := s
	var offsetStr string
	if splitIdx >= 0 {
		periodStr = s[:splitIdx]
		offsetStr = s[splitIdx+1:]
		if strings.TrimSpace(offsetStr) == "" {
			return TickQuant{}, errors.Wrapf(ErrParseTickQuant, "missing offset in %q", s)
		}
	}

	period, err := strconv.ParseUint(strings.TrimSpace(periodStr), 10, 32)
	if err != nil {
		return TickQuant{}, errors.Wrapf(ErrParseTickQuant, "invalid period %q", periodStr)
	}

	var offset int64
	if offsetStr != "" {
		o, err := strconv.ParseUint(strings.TrimSpace(offsetStr), 10, 32)
		if err != nil {
			return TickQuant{}, errors.Wrapf(ErrParseTickQuant, "invalid offset %q", offsetStr)
		}
		offset = sign * int64(o)
	}

	if offset < 0 && period > 0 {
		offset = int64(period) + (offset % int64(period))
		if offset == int64(period) {
			offset = 0
		}
	}

	return TickQuant{Period: uint32(period), Offset: uint32(offset)}, nil
}
