package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/suggest-go/application"
	domainconfig "github.com/felixgeelhaar/suggest-go/domain/config"
	"github.com/felixgeelhaar/suggest-go/domain/detector"
	"github.com/felixgeelhaar/suggest-go/domain/event"
	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
	"github.com/felixgeelhaar/suggest-go/infrastructure/config"
	infradetector "github.com/felixgeelhaar/suggest-go/infrastructure/detector"
	infraevent "github.com/felixgeelhaar/suggest-go/infrastructure/event"
	"github.com/felixgeelhaar/suggest-go/infrastructure/language"
	"github.com/felixgeelhaar/suggest-go/infrastructure/logging"
	"github.com/felixgeelhaar/suggest-go/infrastructure/presenter"
	"github.com/felixgeelhaar/suggest-go/infrastructure/scenario"
	"github.com/felixgeelhaar/suggest-go/infrastructure/telemetry"
)

// replayOptions holds options for the replay command.
type replayOptions struct {
	scenarioPath   string
	configPath     string
	sessionID      string
	jsonOutput     bool
	journalDir     string
	journalBackend string
	trace          string
	otlpEndpoint   string
	metrics        bool
	watch          bool
	realtime       bool
}

// newReplayCmd creates the replay command.
func (a *App) newReplayCmd() *cobra.Command {
	opts := &replayOptions{}

	cmd := &cobra.Command{
		Use:   "replay <scenario>",
		Short: "Replay a recorded editor session through the engine",
		Long: `Replay a recorded editor session through a fresh engine with the
built-in languages and detectors, printing every presented suggestion.

A scenario is a YAML file holding the parsed files of the session and the
ordered steps the user took (typing, caret moves, find, debugger events).

Examples:
  # Replay with default settings
  suggest replay session.yaml

  # Replay with a configuration and keep the event journal
  suggest replay -c suggest.yaml --journal ./journal session.yaml

  # Honour step timing and reload the configuration on change
  suggest replay -c suggest.yaml --realtime --watch session.yaml

  # Print spans and metric totals
  suggest replay --trace stdout --metrics session.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.scenarioPath = args[0]
			return a.replay(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&opts.sessionID, "session", "", "Session id (overrides the scenario)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output suggestions and summary as JSON lines")
	cmd.Flags().StringVar(&opts.journalDir, "journal", "", "Badger directory, sqlite file or postgres DSN for the event journal (default: in memory)")
	cmd.Flags().StringVar(&opts.journalBackend, "journal-backend", journalBadger, "Journal backend (badger, sqlite, postgres)")
	cmd.Flags().StringVar(&opts.trace, "trace", "", "Trace exporter (stdout, otlp)")
	cmd.Flags().StringVar(&opts.otlpEndpoint, "otlp-endpoint", "localhost:4317", "OTLP gRPC endpoint")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Print metric totals after the replay")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Reload detector settings when the configuration changes")
	cmd.Flags().BoolVar(&opts.realtime, "realtime", false, "Wait between steps as recorded")

	return cmd
}

// replay runs a scenario through the engine.
func (a *App) replay(ctx context.Context, opts *replayOptions) error {
	sc, err := scenario.LoadFile(opts.scenarioPath)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	cfg, err := loadConfig(opts.configPath, false)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	result, err := config.NewBuilder(cfg).Build()
	if err != nil {
		return fmt.Errorf("failed to build engine configuration: %w", err)
	}
	defer func() { _ = result.Close() }()

	logCfg := result.Logging
	logCfg.Output = a.stderr
	logging.Init(logCfg)

	settings, closeSettings, err := a.replaySettings(opts, result.Settings)
	if err != nil {
		return err
	}
	defer closeSettings()

	journal, closeJournal, err := openJournal(ctx, opts.journalBackend, opts.journalDir)
	if err != nil {
		return err
	}
	defer func() { _ = closeJournal() }()

	tel, err := a.newTelemetry(opts)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() { _ = tel.Shutdown(context.Background()) }()

	format := presenter.FormatText
	if opts.jsonOutput {
		format = presenter.FormatJSON
	}
	var out suggestion.Presenter = presenter.NewWriterPresenter(a.stdout, presenter.WithFormat(format))
	if result.Presenter != nil {
		out = suggestion.MultiPresenter{out, result.Presenter}
	}

	detectors, err := infradetector.Defaults()
	if err != nil {
		return fmt.Errorf("failed to create detectors: %w", err)
	}

	sessionID := opts.sessionID
	if sessionID == "" {
		sessionID = sc.Session
	}
	before, err := journal.CountEvents(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	start := time.Now()
	clock := start
	publisher := infraevent.NewPublisher(journal)

	engine, err := application.NewEngineWithOptions(
		application.WithSession(suggestion.Session{ID: sessionID}),
		application.WithHistoryCapacity(result.HistoryCapacity),
		application.WithResolver(language.NewDefaultRegistry()),
		application.WithDetectors(detectors...),
		application.WithSettings(settings),
		application.WithCooldownStore(result.Cooldown),
		application.WithPresenter(out),
		application.WithPublisher(publisher),
		application.WithMetrics(tel.Metrics()),
		application.WithTracer(tel.Tracer()),
		application.WithClock(func() time.Time { return clock }),
	)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	player := scenario.NewPlayer(sc, start)
	actions := 0
	for {
		act, err := player.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("replay failed: %w", err)
		}

		if opts.realtime {
			if err := sleepContext(ctx, act.Time.Sub(clock)); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		clock = act.Time
		engine.OnAction(ctx, act)
		actions++
	}

	engine.EndSession(ctx)
	if err := publisher.Close(); err != nil {
		return fmt.Errorf("failed to flush journal: %w", err)
	}

	summary, err := application.NewReplay(journal).SummarizeFrom(ctx, sessionID, uint64(before)+1)
	if err != nil {
		return fmt.Errorf("failed to summarize session: %w", err)
	}

	if err := a.printSummary(summary, actions, opts.jsonOutput); err != nil {
		return err
	}

	if opts.metrics {
		return a.printMetrics(ctx, tel)
	}
	return nil
}

// replaySettings returns the detector settings of the replay and a func
// releasing them.
func (a *App) replaySettings(opts *replayOptions, cfg *domainconfig.Config) (detector.Settings, func(), error) {
	if !opts.watch {
		return cfg, func() {}, nil
	}
	if opts.configPath == "" {
		return nil, nil, fmt.Errorf("--watch requires a configuration file (-c flag)")
	}

	fs, err := config.WatchFile(opts.configPath,
		config.WithLoader(config.NewLoaderWithOptions(
			config.WithKnownDetectors(infradetector.IDUnwrap, infradetector.IDRunToCursor, infradetector.IDFileStructure),
		)),
		config.WithReloadHook(func(c *domainconfig.Config) {
			logging.Info().
				Add(logging.Component("cli")).
				Add(logging.Int("interval_days", c.IntervalDays)).
				Msg("configuration reloaded")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to watch configuration: %w", err)
	}
	return fs, func() { _ = fs.Close() }, nil
}

// newTelemetry creates the telemetry provider selected by the trace flag.
// Spans go to stderr so stdout carries only suggestions.
func (a *App) newTelemetry(opts *replayOptions) (*telemetry.Provider, error) {
	popts := []telemetry.ProviderOption{
		telemetry.WithServiceName("suggest"),
		telemetry.WithServiceVersion(Version),
	}

	switch opts.trace {
	case "":
	case string(telemetry.ExporterStdout):
		popts = append(popts, telemetry.WithStdoutTracing(a.stderr))
	case string(telemetry.ExporterOTLP):
		popts = append(popts, telemetry.WithOTLP(opts.otlpEndpoint), telemetry.WithInsecure())
	default:
		return nil, fmt.Errorf("%w: %s", telemetry.ErrUnknownExporter, opts.trace)
	}

	return telemetry.NewProvider(popts...)
}

type summaryOutput struct {
	Session    string         `json:"session"`
	Actions    int            `json:"actions,omitempty"`
	Presented  int            `json:"presented"`
	Detectors  []string       `json:"detectors,omitempty"`
	Suppressed map[string]int `json:"suppressed,omitempty"`
	Ended      bool           `json:"ended"`
	HistoryLen int            `json:"history_len"`
	Duration   string         `json:"duration"`
}

func newSummaryOutput(s *application.SessionSummary, actions int) summaryOutput {
	out := summaryOutput{
		Session:    s.SessionID,
		Actions:    actions,
		Presented:  len(s.Presented),
		Ended:      s.Ended,
		HistoryLen: s.HistoryLen,
		Duration:   s.End.Sub(s.Start).String(),
	}
	for _, p := range s.Presented {
		out.Detectors = append(out.Detectors, p.DetectorID)
	}
	if len(s.Suppressed) > 0 {
		out.Suppressed = make(map[string]int, len(s.Suppressed))
		for reason, n := range s.Suppressed {
			out.Suppressed[string(reason)] = n
		}
	}
	return out
}

// printSummary prints what the journal recorded for the replayed session.
func (a *App) printSummary(s *application.SessionSummary, actions int, jsonOutput bool) error {
	out := newSummaryOutput(s, actions)

	if jsonOutput {
		return json.NewEncoder(a.stdout).Encode(out)
	}

	_, _ = fmt.Fprintf(a.stdout, "\nReplay completed\n")
	_, _ = fmt.Fprintf(a.stdout, "  Session: %s\n", out.Session)
	_, _ = fmt.Fprintf(a.stdout, "  Actions: %d\n", out.Actions)
	_, _ = fmt.Fprintf(a.stdout, "  Presented: %d\n", out.Presented)
	for _, reason := range sortedReasons(s.Suppressed) {
		_, _ = fmt.Fprintf(a.stdout, "  Suppressed (%s): %d\n", reason, s.Suppressed[reason])
	}
	return nil
}

// printMetrics prints the counter totals of the replay.
func (a *App) printMetrics(ctx context.Context, tel *telemetry.Provider) error {
	totals, err := tel.CounterTotals(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect metrics: %w", err)
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	_, _ = fmt.Fprintf(a.stdout, "\nMetrics:\n")
	for _, name := range names {
		_, _ = fmt.Fprintf(a.stdout, "  %s: %d\n", name, totals[name])
	}
	return nil
}

func sortedReasons(m map[event.SuppressReason]int) []event.SuppressReason {
	reasons := make([]event.SuppressReason, 0, len(m))
	for r := range m {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	return reasons
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
