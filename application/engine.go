// Package application provides the dispatch and throttling layer of the
// suggestion engine.
package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/suggest-go/domain/action"
	"github.com/felixgeelhaar/suggest-go/domain/cooldown"
	"github.com/felixgeelhaar/suggest-go/domain/detector"
	"github.com/felixgeelhaar/suggest-go/domain/event"
	"github.com/felixgeelhaar/suggest-go/domain/history"
	"github.com/felixgeelhaar/suggest-go/domain/language"
	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
	"github.com/felixgeelhaar/suggest-go/infrastructure/logging"
	"github.com/felixgeelhaar/suggest-go/infrastructure/storage/memory"
	"github.com/felixgeelhaar/suggest-go/infrastructure/telemetry"
)

// Engine routes actions to detectors and decides which suggestions reach
// the presenter. One engine serves one editor session.
type Engine struct {
	mu sync.Mutex

	session   suggestion.Session
	history   *history.History
	resolver  language.Resolver
	detectors []detector.Detector
	settings  detector.Settings
	cooldown  cooldown.Store
	presenter suggestion.Presenter
	publisher event.Publisher
	metrics   telemetry.Metrics
	tracer    *telemetry.Tracer
	now       func() time.Time
}

// EngineConfig contains configuration for the engine.
type EngineConfig struct {
	Session         suggestion.Session
	HistoryCapacity int
	Resolver        language.Resolver
	Detectors       []detector.Detector
	Settings        detector.Settings
	Cooldown        cooldown.Store
	Presenter       suggestion.Presenter
	Publisher       event.Publisher
	Metrics         telemetry.Metrics
	Tracer          *telemetry.Tracer
	Clock           func() time.Time
}

// NewEngine creates a new engine with the given configuration.
func NewEngine(config EngineConfig) (*Engine, error) {
	if config.Resolver == nil {
		return nil, ErrResolverRequired
	}
	if config.Presenter == nil {
		return nil, ErrPresenterRequired
	}

	seen := make(map[string]bool, len(config.Detectors))
	for _, d := range config.Detectors {
		if d == nil {
			return nil, fmt.Errorf("%w: nil detector", ErrInvalidDetector)
		}
		id := d.Descriptor().ID
		if id == "" {
			return nil, fmt.Errorf("%w: empty id", ErrInvalidDetector)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidDetector, id)
		}
		seen[id] = true
	}

	e := &Engine{
		session:   config.Session,
		resolver:  config.Resolver,
		detectors: append([]detector.Detector(nil), config.Detectors...),
		settings:  config.Settings,
		cooldown:  config.Cooldown,
		presenter: config.Presenter,
		publisher: config.Publisher,
		metrics:   config.Metrics,
		tracer:    config.Tracer,
		now:       config.Clock,
	}

	capacity := config.HistoryCapacity
	if capacity <= 0 {
		capacity = history.DefaultCapacity
	}
	e.history = history.New(capacity)

	// Set defaults
	if e.session.ID == "" {
		e.session.ID = uuid.New().String()
	}
	if e.settings == nil {
		e.settings = detector.StaticSettings{IntervalDays: DefaultIntervalDays}
	}
	if e.cooldown == nil {
		e.cooldown = memory.NewCooldownStore()
	}
	if e.metrics == nil {
		e.metrics = &telemetry.NoopMetricsProvider{}
	}
	if e.tracer == nil {
		e.tracer = telemetry.NewTracer(nil)
	}
	if e.now == nil {
		e.now = time.Now
	}

	return e, nil
}

// Session returns the session the engine serves.
func (e *Engine) Session() suggestion.Session {
	return e.session
}

// History returns the action history. Callers must not modify it.
func (e *Engine) History() *history.History {
	return e.history
}

// Detectors returns the registered detectors in dispatch order.
func (e *Engine) Detectors() []detector.Detector {
	return append([]detector.Detector(nil), e.detectors...)
}

// OnAction processes one observed action. Actions in languages without a
// capability are dropped before they reach the history.
func (e *Engine) OnAction(ctx context.Context, a action.Action) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, span := e.tracer.StartAction(ctx, e.session.ID, string(a.Kind), a.Language)
	defer span.End()

	e.metrics.RecordActionReceived(ctx, string(a.Kind), a.Language)

	lang, ok := e.resolver.Resolve(a.Language)
	if !ok {
		e.metrics.RecordActionDropped(ctx, a.Language)
		logging.Debug().
			Add(logging.SessionID(e.session.ID)).
			Add(logging.ActionKind(a)).
			Add(logging.Language(a.Language)).
			Msg("action dropped: unsupported language")
		return
	}
	base, _ := e.resolver.Canonical(a.Language)

	e.history.Append(a)

	for _, d := range e.detectors {
		desc := d.Descriptor()
		if !desc.Supports(a.Language) && !desc.Supports(base) {
			continue
		}
		if !e.settings.IsEnabled(desc.ID) {
			continue
		}

		s := e.detect(ctx, d, lang)
		if s.IsNone() {
			continue
		}
		if s.DetectorID == "" {
			s.DetectorID = desc.ID
		}

		if a.UndoRedo() {
			e.suppress(ctx, s, event.SuppressUndoRedo)
			continue
		}

		if e.dispatch(ctx, s) {
			telemetry.MarkPresented(span, s.DetectorID, s.ID)
		}
	}
}

// detect runs one detector and converts a panic into None.
func (e *Engine) detect(ctx context.Context, d detector.Detector, lang language.Capability) (s suggestion.Suggestion) {
	id := d.Descriptor().ID
	start := time.Now()

	defer func() {
		e.metrics.RecordDetectDuration(ctx, id, time.Since(start))
		if r := recover(); r != nil {
			e.metrics.RecordDetectorPanic(ctx, id)
			logging.Error().
				Add(logging.SessionID(e.session.ID)).
				Add(logging.DetectorID(id)).
				Add(logging.Str("panic", fmt.Sprint(r))).
				Msg("detector panicked")
			s = suggestion.None
		}
	}()

	return d.Detect(e.history, lang)
}

// dispatch presents s unless its detector is cooling down, and reports
// whether it was presented.
func (e *Engine) dispatch(ctx context.Context, s suggestion.Suggestion) bool {
	now := e.now()

	if !e.ready(ctx, s.DetectorID, now) {
		e.suppress(ctx, s, event.SuppressCooldown)
		return false
	}

	if err := e.presenter.Present(ctx, e.session, s); err != nil {
		logging.Warn().
			Add(logging.SessionID(e.session.ID)).
			Add(logging.DetectorID(s.DetectorID)).
			Add(logging.ErrorField(err)).
			Msg("presenter failed")
	}

	if err := e.cooldown.RecordFired(ctx, s.DetectorID, now); err != nil {
		logging.Warn().
			Add(logging.SessionID(e.session.ID)).
			Add(logging.DetectorID(s.DetectorID)).
			Add(logging.ErrorField(err)).
			Msg("failed to record suggestion time")
	}

	e.metrics.RecordSuggestionPresented(ctx, s.DetectorID)
	logging.Info().
		Add(logging.SessionID(e.session.ID)).
		Add(logging.DetectorID(s.DetectorID)).
		Add(logging.SuggestionKind(s)).
		Msg("suggestion presented")

	e.publish(ctx, event.TypeSuggestionPresented, event.SuggestionPresentedPayload{Suggestion: s})
	return true
}

// ready reports whether detectorID is outside its cooldown. A store error
// counts as ready.
func (e *Engine) ready(ctx context.Context, detectorID string, now time.Time) bool {
	last, ok, err := e.cooldown.LastFired(ctx, detectorID)
	if err != nil {
		logging.Warn().
			Add(logging.SessionID(e.session.ID)).
			Add(logging.DetectorID(detectorID)).
			Add(logging.ErrorField(err)).
			Msg("failed to read suggestion time")
		return true
	}
	return cooldown.Ready(last, ok, now, e.settings.SuggestingIntervalDays())
}

func (e *Engine) suppress(ctx context.Context, s suggestion.Suggestion, reason event.SuppressReason) {
	e.metrics.RecordSuggestionSuppressed(ctx, s.DetectorID, string(reason))
	logging.Debug().
		Add(logging.SessionID(e.session.ID)).
		Add(logging.DetectorID(s.DetectorID)).
		Add(logging.Reason(string(reason))).
		Msg("suggestion suppressed")

	e.publish(ctx, event.TypeSuggestionSuppressed, event.SuggestionSuppressedPayload{
		Suggestion: s,
		Reason:     reason,
	})
}

func (e *Engine) publish(ctx context.Context, eventType event.Type, payload any) {
	if e.publisher == nil {
		return
	}

	ev, err := event.NewEvent(e.session.ID, eventType, payload)
	if err == nil {
		ev.ID = uuid.New().String()
		ev.Timestamp = e.now()
		err = e.publisher.Publish(ctx, ev)
	}
	if err != nil && !errors.Is(err, event.ErrPublisherClosed) {
		logging.Warn().
			Add(logging.SessionID(e.session.ID)).
			Add(logging.Str("event_type", string(eventType))).
			Add(logging.ErrorField(err)).
			Msg("failed to publish event")
	}
}

// EndSession clears the history and resets every detector. Cooldown
// records survive.
func (e *Engine) EndSession(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := e.history.Len()
	e.history.Clear()
	for _, d := range e.detectors {
		d.Reset()
	}

	logging.Debug().
		Add(logging.SessionID(e.session.ID)).
		Add(logging.Int("history_len", n)).
		Msg("session ended")

	e.publish(ctx, event.TypeSessionEnded, event.SessionEndedPayload{HistoryLen: n})
}
