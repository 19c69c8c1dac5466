package watch

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// snapshotSpec turns a watch.snapshot_schedule value into a cron spec.
//
// Cron expressions and descriptors ("0 * * * *", "@hourly") pass through.
// Intervals, either a Go duration ("30m") or HH:MM ("01:30"), become
// "@every" descriptors.
func snapshotSpec(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return "", fmt.Errorf("schedule required")
	case strings.HasPrefix(s, "@") || strings.ContainsAny(s, " \t"):
		return s, nil
	}

	every, err := parseEvery(s)
	if err != nil {
		return "", fmt.Errorf("invalid schedule %q (use cron like '0 * * * *', HH:MM like '01:30', or a duration like '30m'): %w", raw, err)
	}
	return "@every " + every.String(), nil
}

func parseEvery(s string) (time.Duration, error) {
	var d time.Duration
	if hh, mm, ok := strings.Cut(s, ":"); ok {
		h, err := strconv.Atoi(hh)
		if err != nil || h < 0 {
			return 0, fmt.Errorf("bad hours %q", hh)
		}
		m, err := strconv.Atoi(mm)
		if err != nil || len(mm) != 2 || m > 59 {
			return 0, fmt.Errorf("bad minutes %q", mm)
		}
		d = time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
	} else {
		var err error
		if d, err = time.ParseDuration(s); err != nil {
			return 0, err
		}
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be > 0")
	}
	return d, nil
}
