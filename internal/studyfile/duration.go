package studyfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"studyplan/internal/schedule"
)

var (
	reISOPeriod = regexp.MustCompile(`^(-?)P(\d+)([DW])$`)
	reShorthand = regexp.MustCompile(`^(-?\d+)\s*([A-Za-z]+)$`)
)

// ParseDuration parses the string forms of a duration:
//   - ISO-8601 period with a single day or week component: "P3D", "P2W", "-P1D"
//   - shorthand: "3d", "2w", "3 days", "1 week"
func ParseDuration(raw string) (schedule.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return schedule.Duration{}, fmt.Errorf("duration required")
	}
	if m := reISOPeriod.FindStringSubmatch(strings.ToUpper(s)); m != nil {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return schedule.Duration{}, fmt.Errorf("invalid duration %q: %w", raw, err)
		}
		if m[1] == "-" {
			n = -n
		}
		unit := schedule.UnitDay
		if m[3] == "W" {
			unit = schedule.UnitWeek
		}
		return schedule.Duration{Value: n, Unit: unit}, nil
	}
	if m := reShorthand.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return schedule.Duration{}, fmt.Errorf("invalid duration %q: %w", raw, err)
		}
		unit, err := schedule.ParseUnit(m[2])
		if err != nil {
			return schedule.Duration{}, err
		}
		return schedule.Duration{Value: n, Unit: unit}, nil
	}
	return schedule.Duration{}, fmt.Errorf(
		"invalid duration %q (use P3D/P2W, 3d/2w or {value: 3, unit: day})", raw,
	)
}

type durationObject struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

// decodeDuration converts a raw JSON duration (string or object) found at path.
func decodeDuration(path string, raw json.RawMessage) (*schedule.Duration, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		d, err := ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &d, nil
	}

	var obj durationObject
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	unit, err := schedule.ParseUnit(obj.Unit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &schedule.Duration{Value: obj.Value, Unit: unit}, nil
}
