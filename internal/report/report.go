// Package report renders computed timelines for people and for tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"studyplan/internal/schedule"
)

// count formats n with thousands separators and the matching word form.
func count(n int, singular string) string {
	return humanize.Comma(int64(n)) + " " + english.PluralWord(n, singular, "")
}

// Summary writes a plain-text report of res.
func Summary(w io.Writer, st schedule.Study, res schedule.Result) error {
	tl := res.Timeline

	title := st.Identifier
	if st.Name != "" {
		title = fmt.Sprintf("%s (%s)", st.Identifier, st.Name)
	}
	fmt.Fprintf(w, "Study %s, status %s\n", title, st.Status)
	if st.StudyDuration != nil {
		fmt.Fprintf(w, "Duration %s\n", st.StudyDuration)
	}
	fmt.Fprintf(w, "%s, %s, %s, %s\n",
		count(len(tl.Sessions), "session"),
		count(len(tl.Schedule), "scheduled item"),
		count(tl.TotalNotifications, "notification"),
		count(tl.TotalMinutes, "total minute"),
	)

	if len(tl.Sessions) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SESSION\tNAME\tANCHOR\tEND\tOCCURRENCES\tEVERY\tWINDOWS\tNOTIFICATIONS\tMINUTES")
		for _, s := range tl.Sessions {
			every := "-"
			if s.IntervalDays > 0 {
				every = count(s.IntervalDays, "day")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%d\t%s\n",
				s.GUID, s.Label, s.StartEventID, s.EndType, s.Occurrences, every,
				strings.Join(s.TimeWindowGUIDs, ","), s.Notifications, humanize.Comma(int64(s.Minutes)))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(tl.Schedule) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DAY\tUNTIL\tSESSION\tWINDOW\tOCCURRENCE\tANCHOR")
		for _, it := range tl.Schedule {
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d\t%s\n",
				it.StartDay, it.EndDay, it.SessionGUID, it.TimeWindowGUID, it.Occurrence, it.StartEventID)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if !res.OK() {
		fmt.Fprintf(w, "\n%s excluded:\n", count(len(res.Errors), "session"))
		for _, key := range res.Errors.Keys() {
			fmt.Fprintf(w, "  %s: %v\n", key, res.Errors[key])
		}
	}
	return nil
}

// Document is the JSON form of a computed timeline.
type Document struct {
	Study    string            `json:"study"`
	Name     string            `json:"name,omitempty"`
	Status   string            `json:"status"`
	OK       bool              `json:"ok"`
	Timeline schedule.Timeline `json:"timeline"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// NewDocument converts res into its JSON form.
func NewDocument(st schedule.Study, res schedule.Result) Document {
	doc := Document{
		Study:    st.Identifier,
		Name:     st.Name,
		Status:   string(st.Status),
		OK:       res.OK(),
		Timeline: res.Timeline,
	}
	if len(res.Errors) > 0 {
		doc.Errors = make(map[string]string, len(res.Errors))
		for k, err := range res.Errors {
			doc.Errors[k] = err.Error()
		}
	}
	return doc
}

// JSON writes res as an indented JSON document.
func JSON(w io.Writer, st schedule.Study, res schedule.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(st, res))
}
