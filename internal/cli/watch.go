package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"studyplan/internal/eventbus"
	"studyplan/internal/studyfile"
	"studyplan/internal/watch"
	logx "studyplan/pkg/logx"
)

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <study-file>",
		Short: "Recompute the timeline whenever the study file changes",
		Long: `Follow a study document and recompute its timeline on every change
until interrupted. Configure debounce, min_interval and snapshot_schedule in
the watch section of the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			settings, err := e.cfg.WatchSettings()
			if err != nil {
				return err
			}
			store, err := e.openStore()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			bus := eventbus.New()
			events, unsub := bus.Subscribe(32, eventbus.TimelineComputed, eventbus.TimelineInvalid, eventbus.StudyRejected)
			defer unsub()
			done := make(chan struct{})
			go func() {
				defer close(done)
				printEvents(cmd.OutOrStdout(), events)
			}()

			w := studyfile.NewWatcher(args[0], settings.Debounce, e.log.With(logx.String("comp", "studyfile")))
			svc, err := watch.New(watch.Options{
				Watcher:  w,
				Store:    store,
				Bus:      bus,
				Settings: settings,
				Log:      e.log.With(logx.String("comp", "watch")),
			})
			if err != nil {
				return err
			}
			err = svc.Run(cmd.Context())
			unsub()
			<-done
			if n := bus.Dropped(); n > 0 {
				e.log.Warn("events not printed; output too slow", logx.Uint64("dropped", n))
			}
			return err
		},
	}
}

// printEvents writes one line per timeline result until events is closed.
func printEvents(w io.Writer, events <-chan eventbus.Event) {
	for ev := range events {
		switch data := ev.Data.(type) {
		case eventbus.TimelineInfo:
			status := "ok"
			if ev.Type == eventbus.TimelineInvalid {
				status = fmt.Sprintf("%d invalid %v", len(data.Invalid), data.Invalid)
			}
			fmt.Fprintf(w, "%s %s: %d items, %d notifications, %d minutes (%s)\n",
				ev.Time.Format("15:04:05"), data.StudyID, data.Items, data.TotalNotifications, data.TotalMinutes, status)
		case eventbus.Rejection:
			fmt.Fprintf(w, "%s %s: rejected: %s\n", ev.Time.Format("15:04:05"), data.Path, data.Err)
		}
	}
}
