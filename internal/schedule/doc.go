// Package schedule computes study timelines from session schedule configuration.
//
// The package is pure: it never reads files, logs or keeps state between calls.
// Build turns a Schedule plus the study duration into a Timeline and a per
// session error report:
//   - ResolveEndCondition decides how many times a session occurs
//   - ExpandWindows turns each occurrence into day-indexed ScheduledItems
//   - CountNotifications / CountMinutes derive the aggregate counters
//
// Day offsets are measured from each session's anchor event (StartEventID).
package schedule
