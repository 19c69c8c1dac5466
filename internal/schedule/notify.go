package schedule

import "math"

const MinutesPerDay = 1440

// CountNotifications returns how many notifications a session sends over its
// lifetime, saturating at math.MaxInt. Sessions without a notification
// config send none.
func CountNotifications(cfg *NotificationConfig, occurrences, windows int) int {
	n, _ := countNotifications(cfg, occurrences, windows)
	return n
}

// countNotifications is CountNotifications reporting overflow instead of
// saturating at math.MaxInt.
func countNotifications(cfg *NotificationConfig, occurrences, windows int) (int, bool) {
	if cfg == nil || occurrences <= 0 || windows <= 0 {
		return 0, true
	}
	per := windows
	if cfg.Frequency == OncePerOccurrence {
		per = 1
	}
	factor := 1
	if cfg.Reminder {
		factor = 2
	}
	n, ok := mulInt(occurrences, per)
	if ok {
		n, ok = mulInt(n, factor)
	}
	if !ok {
		return math.MaxInt, false
	}
	return n, true
}

// CountMinutes sums the open time of the given items, saturating at math.MaxInt.
func CountMinutes(items []ScheduledItem) int {
	n, _ := countMinutes(items)
	return n
}

func countMinutes(items []ScheduledItem) (int, bool) {
	total := 0
	for _, it := range items {
		m, ok := mulInt(it.EndDay-it.StartDay, MinutesPerDay)
		if ok {
			total, ok = addInt(total, m)
		}
		if !ok {
			return math.MaxInt, false
		}
	}
	return total, true
}
