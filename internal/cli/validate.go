package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"studyplan/internal/studyfile"
)

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <study-file>",
		Short: "Check that every session of a study can be scheduled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			st, err := studyfile.Load(args[0])
			if err != nil {
				return err
			}
			res := st.Timeline()
			out := cmd.OutOrStdout()
			if res.OK() {
				fmt.Fprintf(out, "%s: ok (%d sessions)\n", st.Identifier, len(res.Timeline.Sessions))
				return nil
			}
			for _, key := range res.Errors.Keys() {
				fmt.Fprintf(out, "%s: %s: %v\n", st.Identifier, key, res.Errors[key])
			}
			return ErrInvalid
		},
	}
}
