package syncer

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/pfrederiksen/fixture-sync/internal/calendar"
	"github.com/pfrederiksen/fixture-sync/internal/config"
	"github.com/pfrederiksen/fixture-sync/internal/logger"
	"github.com/pfrederiksen/fixture-sync/internal/match"
	"github.com/pfrederiksen/fixture-sync/internal/metrics"
	"github.com/pfrederiksen/fixture-sync/internal/notifier"
	"github.com/pfrederiksen/fixture-sync/internal/scraper"
	"github.com/pfrederiksen/fixture-sync/internal/storage"
)

// MessageNothingToSync is recorded when no upcoming fixture was found.
const MessageNothingToSync = "nothing to sync"

// alertTimeout bounds alert delivery after a failed run.
const alertTimeout = 30 * time.Second

// PageFetcher retrieves source pages.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (scraper.Page, error)
}

// StatusStore persists the last run.
type StatusStore interface {
	Load() (*storage.Run, error)
	Save(run *storage.Run) error
}

// CalendarOpener builds an authenticated calendar service from credential material.
type CalendarOpener func(ctx context.Context, credentials string) (calendar.Service, error)

// Syncer runs sync passes for one configuration.
type Syncer struct {
	cfg          *config.Config
	fetcher      PageFetcher
	store        StatusStore
	notifier     notifier.Notifier
	metrics      *metrics.Recorder
	openCalendar CalendarOpener
	now          func() time.Time
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f PageFetcher) Option {
	return func(s *Syncer) { s.fetcher = f }
}

// WithStore replaces the status file store.
func WithStore(st StatusStore) Option {
	return func(s *Syncer) { s.store = st }
}

// WithNotifier replaces the alert notifier built from the configuration.
func WithNotifier(n notifier.Notifier) Option {
	return func(s *Syncer) { s.notifier = n }
}

// WithMetrics records run metrics in r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Syncer) { s.metrics = r }
}

// WithCalendarOpener replaces the Google Calendar client factory.
func WithCalendarOpener(open CalendarOpener) Option {
	return func(s *Syncer) { s.openCalendar = open }
}

// WithClock sets the function used for "now".
func WithClock(now func() time.Time) Option {
	return func(s *Syncer) { s.now = now }
}

// New creates a Syncer. Collaborators not supplied as options are built from cfg.
func New(cfg *config.Config, opts ...Option) (*Syncer, error) {
	s := &Syncer{
		cfg:          cfg,
		openCalendar: OpenGoogleCalendar,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.fetcher == nil {
		s.fetcher = scraper.NewFetcher(cfg.FetcherConfig())
	}
	if s.store == nil {
		st, err := storage.New(cfg.StatusFile)
		if err != nil {
			return nil, errors.Wrap(err, "opening status store")
		}
		s.store = st
	}
	if s.notifier == nil {
		n, err := NotifierFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		s.notifier = n
	}
	return s, nil
}

// Run performs one sync pass. The returned run is never nil and has already been saved.
func (s *Syncer) Run(ctx context.Context) (run *storage.Run, err error) {
	run = storage.NewRun(s.now())
	logger.Info("Sync started", logger.Fields{"run_id": run.ID})

	defer func() {
		run.Finish(s.now(), err)
		if saveErr := s.store.Save(run); saveErr != nil {
			logger.Error("Failed to save run status", logger.Fields{"run_id": run.ID}, saveErr)
		}
		s.metrics.ObserveRun(run)

		if err != nil {
			logger.Error("Sync failed", logger.Fields{"run_id": run.ID, "duration": run.Duration}, err)
			s.alert(ctx, run)
			return
		}
		logger.Info("Sync finished", logger.Fields{
			"run_id":   run.ID,
			"duration": run.Duration,
			"found":    run.Found,
			"created":  run.Created,
			"updated":  run.Updated,
			"skipped":  run.Skipped,
		})
	}()

	if err = s.cfg.Validate(); err != nil {
		return run, err
	}
	if saveErr := s.store.Save(run); saveErr != nil {
		logger.Warn("Failed to save running status", logger.Fields{"run_id": run.ID, "error": saveErr.Error()})
	}

	upcoming, err := s.Fixtures(ctx)
	if err != nil {
		return run, err
	}
	run.Found = len(upcoming)

	if len(upcoming) == 0 {
		run.Message = MessageNothingToSync
		return run, nil
	}

	svc, err := s.openCalendar(ctx, s.cfg.Credentials)
	if err != nil {
		return run, err
	}

	loc, err := s.cfg.Location()
	if err != nil {
		return run, err
	}
	rc := s.cfg.ReconcilerConfig(loc)
	rc.Now = s.now

	result, err := calendar.NewReconciler(svc, rc).Reconcile(ctx, upcoming)
	if result != nil {
		run.Created = result.Created
		run.Updated = result.Updated
		run.Skipped = result.Skipped
		for _, we := range result.Errors {
			run.Errors = append(run.Errors, storage.RunError{Fixture: we.Fixture, Error: we.Error})
		}
	}
	return run, err
}

// Status returns the last recorded run.
func (s *Syncer) Status(ctx context.Context) (*storage.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Load()
}

// Fixtures fetches, parses and normalizes every configured source and returns the upcoming
// fixtures in kickoff order. A source that cannot be fetched or parsed is logged and
// skipped.
func (s *Syncer) Fixtures(ctx context.Context) ([]*match.Match, error) {
	if len(s.cfg.Sources) == 0 {
		return nil, errors.Mark(errors.New("missing or invalid configuration: sources"), config.ErrConfig)
	}

	loc, err := s.cfg.Location()
	if err != nil {
		return nil, err
	}

	parser := scraper.NewParser(s.cfg.Team)
	normalizer := match.NewNormalizer(s.cfg.Team, loc,
		match.WithHomeKeywords(s.cfg.HomeKeywords),
		match.WithChannels(s.cfg.Channels),
		match.WithClock(s.now),
	)

	var all []*match.Match
	for _, src := range s.cfg.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		all = append(all, s.collectSource(ctx, src, parser, normalizer)...)
	}

	upcoming := match.Process(all, s.now())
	logger.Info("Fixtures collected", logger.Fields{
		"sources":  len(s.cfg.Sources),
		"parsed":   len(all),
		"upcoming": len(upcoming),
	})
	return upcoming, nil
}

func (s *Syncer) collectSource(ctx context.Context, src config.Source, parser *scraper.Parser, normalizer *match.Normalizer) []*match.Match {
	fields := logger.Fields{"url": src.URL, "competition": src.Competition}

	page, err := s.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		s.metrics.ObserveSource(metrics.SourceFailed)
		logger.Error("Source fetch failed", fields, err)
		return nil
	}
	if page.NotPublished {
		s.metrics.ObserveSource(metrics.SourceNotPublished)
		logger.Info("Source not published yet", fields)
		return nil
	}
	s.metrics.ObserveSource(metrics.SourceOK)

	fragments, err := parser.Parse(strings.NewReader(page.Body), src.Competition, src.URL)
	if err != nil {
		logger.Error("Source parse failed", fields, err)
		return nil
	}

	matches := make([]*match.Match, 0, len(fragments))
	for _, f := range fragments {
		m, ok := normalizer.Normalize(f)
		if !ok {
			logger.Debug("Fragment dropped", logger.Fields{"url": src.URL, "date": f.DateTimeText, "opponent": f.OpponentText})
			continue
		}
		matches = append(matches, m)
	}

	logger.Info("Source parsed", logger.Fields{
		"url":       src.URL,
		"fragments": len(fragments),
		"matches":   len(matches),
	})
	return matches
}

func (s *Syncer) alert(ctx context.Context, run *storage.Run) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)
	defer cancel()

	if err := s.notifier.Notify(ctx, run); err != nil {
		logger.Warn("Alert delivery failed", logger.Fields{"run_id": run.ID, "error": err.Error()})
	}
}
