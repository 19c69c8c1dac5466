// Package cli defines the Cobra commands of the studyplan tool.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"studyplan/internal/config"
	"studyplan/internal/storage"
	logx "studyplan/pkg/logx"
)

var version = "dev" // set via ldflags at build time

// ErrInvalid reports that at least one session could not be scheduled.
var ErrInvalid = errors.New("timeline has invalid sessions")

type options struct {
	configPath string
	logLevel   string
}

// env is what every subcommand needs after flags are parsed.
type env struct {
	cfg    *config.Config
	log    logx.Logger
	logSvc *logx.Service
}

func (e *env) Close() {
	if e.logSvc != nil {
		_ = e.logSvc.Close()
	}
}

// openStore opens the configured run history; nil means disabled.
func (e *env) openStore() (storage.Store, error) {
	sc, err := e.cfg.StorageSettings()
	if err != nil {
		return nil, err
	}
	return storage.Open(sc, e.log.With(logx.String("comp", "storage")))
}

func setup(opts *options) (*env, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if lvl := strings.TrimSpace(opts.logLevel); lvl != "" {
		if !logx.ValidLevel(lvl) {
			return nil, fmt.Errorf("--log-level: unknown level %q", lvl)
		}
		cfg.Logging.Level = lvl
	}
	svc, log := logx.New(cfg.LogConfig())
	return &env{cfg: cfg, log: log, logSvc: svc}, nil
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "studyplan",
		Short: "Compute study schedule timelines",
		Long: `studyplan expands a study's session schedule into a day-indexed
timeline of session windows, with notification and minute totals.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv(config.EnvPrefix+"CONFIG"), "path to config file (JSON or YAML)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level (trace, debug, info, warn, error)")

	root.AddCommand(newTimelineCmd(opts))
	root.AddCommand(newValidateCmd(opts))
	root.AddCommand(newWatchCmd(opts))
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, ErrInvalid) {
			fmt.Fprintln(stderr, "error:", err)
		}
		return 1
	}
	return 0
}
