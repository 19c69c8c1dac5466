package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"studyplan/internal/config"
	"studyplan/internal/eventbus"
	"studyplan/internal/runtime/supervisor"
	"studyplan/internal/schedule"
	"studyplan/internal/storage"
	"studyplan/internal/studyfile"
	logx "studyplan/pkg/logx"
)

// Options wires a Service. Store and Bus are optional.
type Options struct {
	Watcher  *studyfile.Watcher
	Store    storage.Store
	Bus      eventbus.Bus
	Settings config.Watch
	Log      logx.Logger
}

// maxWatchRestarts is how many times a failed file watcher is restarted
// before Run gives up.
const maxWatchRestarts = 5

// Service follows one study document and keeps its timeline current.
type Service struct {
	w     *studyfile.Watcher
	store storage.Store
	bus   eventbus.Bus
	log   logx.Logger

	limiter  *rate.Limiter
	parser   cron.Parser
	cronSpec string // empty when snapshots are off

	// follow watches the study file; restart bounds how often it is revived.
	follow  func(ctx context.Context) error
	restart []supervisor.RestartOption

	// mu serializes computations triggered by edits and by the snapshot cron.
	mu sync.Mutex
}

func New(opts Options) (*Service, error) {
	if opts.Watcher == nil {
		return nil, fmt.Errorf("watch: watcher is required")
	}
	log := opts.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{
		w:     opts.Watcher,
		store: opts.Store,
		bus:   opts.Bus,
		log:   log,
		// SecondOptional allows both 5-field and 6-field (with seconds) cron specs.
		parser:  cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		limiter: rate.NewLimiter(rate.Inf, 1),
		follow:  opts.Watcher.Watch,
		restart: []supervisor.RestartOption{
			supervisor.WithRestartBackoff(time.Second, 30*time.Second),
			supervisor.WithMaxRestarts(maxWatchRestarts),
		},
	}
	if d := opts.Settings.MinInterval; d > 0 {
		s.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
	if raw := opts.Settings.SnapshotSchedule; raw != "" {
		spec, err := snapshotSpec(raw)
		if err != nil {
			return nil, fmt.Errorf("watch.snapshot_schedule: %w", err)
		}
		if _, err := s.parser.Parse(spec); err != nil {
			return nil, fmt.Errorf("watch.snapshot_schedule: %w", err)
		}
		s.cronSpec = spec
	}
	s.w.OnReject(s.rejected)
	return s, nil
}

// Run loads the document, computes its timeline and then recomputes on
// every change until ctx is done. It fails if the file watcher keeps failing.
func (s *Service) Run(ctx context.Context) error {
	ch := s.w.Subscribe(4)
	defer s.w.Unsubscribe(ch)

	snap, err := s.w.Load()
	if err != nil {
		return fmt.Errorf("load study: %w", err)
	}
	s.Compute(ctx, snap, storage.SourceLoad)

	sup := supervisor.New(ctx, supervisor.WithLogger(s.log), supervisor.WithFailFast())
	ctx = sup.Context()
	defer func() {
		err := sup.Stop(context.Background())
		c := sup.Counters()
		s.log.Debug("background tasks stopped",
			logx.Uint64("started", c.Started),
			logx.Int64("active", c.Active),
			logx.Err(err),
		)
	}()

	if s.cronSpec != "" {
		c := cron.New(cron.WithParser(s.parser))
		if _, err := c.AddFunc(s.cronSpec, func() { s.snapshot(ctx) }); err != nil {
			return fmt.Errorf("snapshot schedule: %w", err)
		}
		c.Start()
		defer func() { <-c.Stop().Done() }()
		s.log.Info("snapshot schedule active", logx.String("spec", s.cronSpec))
	}

	sup.GoRestart("studyfile.watch", s.follow, s.restart...)

	for {
		select {
		case <-ctx.Done():
			return sup.Err()
		case snap, ok := <-ch:
			if !ok {
				return sup.Err()
			}
			if err := s.limiter.Wait(ctx); err != nil {
				return sup.Err()
			}
			// Edits that arrived while waiting supersede this one.
			if cur, ok := s.w.Current(); ok {
				snap = cur
			}
			s.Compute(ctx, snap, storage.SourceChange)
		}
	}
}

// Compute builds the timeline of snap, announces it and records it.
func (s *Service) Compute(ctx context.Context, snap studyfile.Snapshot, source string) schedule.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	res := snap.Study.Timeline()
	took := time.Since(start)

	study := snap.Study
	if source != storage.SourceSnapshot {
		s.publish(eventbus.StudyLoaded, eventbus.StudyInfo{
			Path:     snap.Path,
			StudyID:  study.Identifier,
			Hash:     snap.Hash,
			Sessions: len(study.Schedule.Sessions),
		})
	}

	invalid := res.Errors.Keys()
	typ := eventbus.TimelineComputed
	if !res.OK() {
		typ = eventbus.TimelineInvalid
	}
	s.publish(typ, eventbus.TimelineInfo{
		StudyID:            study.Identifier,
		Hash:               snap.Hash,
		Items:              len(res.Timeline.Schedule),
		TotalNotifications: res.Timeline.TotalNotifications,
		TotalMinutes:       res.Timeline.TotalMinutes,
		Invalid:            invalid,
	})

	s.log.Info("timeline computed",
		logx.String("study", study.Identifier),
		logx.String("source", source),
		logx.Uint64("hash", snap.Hash),
		logx.Bool("ok", res.OK()),
		logx.Strs("invalid", invalid),
		logx.Int("items", len(res.Timeline.Schedule)),
		logx.Int("notifications", res.Timeline.TotalNotifications),
		logx.Int("minutes", res.Timeline.TotalMinutes),
		logx.Duration("took", took),
	)
	for _, key := range invalid {
		s.log.Warn("session excluded from timeline", logx.String("session", key), logx.Err(res.Errors[key]))
	}
	if s.log.Enabled(logx.LevelDebug) {
		for _, g := range res.Timeline.Sessions {
			s.log.Debug("session timeline",
				logx.String("session", g.GUID),
				logx.Int("occurrences", g.Occurrences),
				logx.Int("interval_days", g.IntervalDays),
				logx.Int("notifications", g.Notifications),
				logx.Int("minutes", g.Minutes),
			)
		}
	}

	s.record(ctx, storage.NewRun(study, snap.Hash, res, source, took))
	return res
}

func (s *Service) record(ctx context.Context, run storage.RunRecord) {
	if s.store == nil {
		return
	}
	if run.Source != storage.SourceSnapshot {
		last, ok, err := s.store.LastRun(ctx, run.StudyID)
		if err != nil {
			s.log.Warn("run history lookup failed", logx.String("study", run.StudyID), logx.Err(err))
		} else if ok && last.Hash == run.Hash {
			s.log.Debug("study unchanged since last run; not recorded", logx.String("hash", run.Hash))
			return
		}
	}
	if err := s.store.AppendRun(ctx, run); err != nil {
		s.log.Warn("run history append failed", logx.String("study", run.StudyID), logx.Err(err))
	}
}

func (s *Service) snapshot(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	snap, ok := s.w.Current()
	if !ok {
		return
	}
	s.Compute(ctx, snap, storage.SourceSnapshot)
}

func (s *Service) rejected(path string, err error) {
	s.publish(eventbus.StudyRejected, eventbus.Rejection{Path: path, Err: err.Error()})
}

func (s *Service) publish(typ string, data any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventbus.Event{Type: typ, Data: data})
}
