package cli

import (
	"time"

	"github.com/spf13/cobra"

	"studyplan/internal/report"
	"studyplan/internal/storage"
	"studyplan/internal/studyfile"
	logx "studyplan/pkg/logx"
)

func newTimelineCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "timeline <study-file>",
		Short: "Compute and print a study's timeline",
		Long: `Compute the timeline of a study document (JSON or YAML) and print it.
Sessions that cannot be scheduled are listed with the reason; the rest of
the timeline is still printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			path := args[0]
			st, err := studyfile.Load(path)
			if err != nil {
				return err
			}
			start := time.Now()
			res := st.Timeline()
			took := time.Since(start)
			e.log.Debug("timeline computed",
				logx.String("study", st.Identifier),
				logx.Int("items", len(res.Timeline.Schedule)),
				logx.Strs("invalid", res.Errors.Keys()),
				logx.Duration("took", took),
			)

			store, err := e.openStore()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				run := storage.NewRun(st, studyfile.Hash(st), res, storage.SourceCLI, took)
				if err := store.AppendRun(cmd.Context(), run); err != nil {
					e.log.Warn("run history append failed", logx.Err(err))
				}
			}

			if asJSON {
				return report.JSON(cmd.OutOrStdout(), st, res)
			}
			return report.Summary(cmd.OutOrStdout(), st, res)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the timeline as JSON")
	return cmd
}
