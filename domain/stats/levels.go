package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gowelch/domain/core"
)

// ConfidenceLevel is a coverage probability in the open interval (0, 1).
type ConfidenceLevel float64

// Validate returns a DomainError when the level is not strictly between 0 and 1.
func (l ConfidenceLevel) Validate() error {
	f := float64(l)
	if math.IsNaN(f) || f <= 0 || f >= 1 {
		return core.NewDomainError("ConfidenceLevel", f)
	}
	return nil
}

// Alpha returns 1 - level.
func (l ConfidenceLevel) Alpha() float64 { return 1 - float64(l) }

// Percent formats the level as a percentage, e.g. "95%" or "99.5%".
func (l ConfidenceLevel) Percent() string {
	return strconv.FormatFloat(float64(l)*100, 'f', -1, 64) + "%"
}

// String keeps map keys readable when an IntervalSet is encoded as JSON.
func (l ConfidenceLevel) String() string {
	return strconv.FormatFloat(float64(l), 'f', -1, 64)
}

// MarshalText encodes the level as a bare decimal so it can key JSON objects.
func (l ConfidenceLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *ConfidenceLevel) UnmarshalText(b []byte) error {
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("confidence level %q: %w", string(b), err)
	}
	*l = ConfidenceLevel(f)
	return nil
}

// MarshalJSON keeps plain values encoded as JSON numbers; MarshalText would
// otherwise turn them into strings.
func (l ConfidenceLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(l))
}

func (l *ConfidenceLevel) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*l = ConfidenceLevel(f)
	return nil
}

// NormalizeLevels validates every level, removes duplicates and sorts ascending.
// The input slice is not modified.
func NormalizeLevels(levels []ConfidenceLevel) ([]ConfidenceLevel, error) {
	seen := make(map[ConfidenceLevel]bool, len(levels))
	out := make([]ConfidenceLevel, 0, len(levels))
	for _, l := range levels {
		if err := l.Validate(); err != nil {
			return nil, err
		}
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ParseLevels parses a comma separated list such as "0.5, 0.8, 0.95".
// Values above 1 are read as percentages, so "95" means 0.95.
func ParseLevels(s string) ([]ConfidenceLevel, error) {
	var levels []ConfidenceLevel
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "%"))
		if part == "" {
			continue
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid confidence level %q: %w", part, err)
		}
		if f > 1 {
			f /= 100
		}
		levels = append(levels, ConfidenceLevel(f))
	}
	return NormalizeLevels(levels)
}
