// Package studyfile reads study documents (YAML or JSON) into schedule.Study
// values and watches them for edits.
//
// Durations may be written as {value, unit}, as ISO-8601 day/week periods
// ("P3D", "P2W") or as shorthand ("3d", "2 weeks"). Negative values are kept
// as-is so the timeline reports them against the owning session instead of
// rejecting the whole document.
package studyfile
