package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/suggest-go/application"
	"github.com/felixgeelhaar/suggest-go/domain/event"
	"github.com/felixgeelhaar/suggest-go/infrastructure/analytics"
	"github.com/felixgeelhaar/suggest-go/infrastructure/storage/badger"
	"github.com/felixgeelhaar/suggest-go/infrastructure/storage/memory"
	"github.com/felixgeelhaar/suggest-go/infrastructure/storage/postgres"
	"github.com/felixgeelhaar/suggest-go/infrastructure/storage/sqlite"
)

// journal is an event store that can enumerate its sessions.
type journal interface {
	event.Store
	CountEvents(ctx context.Context, sessionID string) (int64, error)
	ListSessions(ctx context.Context) ([]string, error)
}

// Journal backends.
const (
	journalBadger   = "badger"
	journalSQLite   = "sqlite"
	journalPostgres = "postgres"
)

// openJournal opens the journal at path: a badger directory, a sqlite file
// or a postgres connection string. An empty path gives an in-memory journal.
func openJournal(ctx context.Context, backend, path string) (journal, func() error, error) {
	if path == "" {
		return memory.NewEventStore(), func() error { return nil }, nil
	}

	switch backend {
	case "", journalBadger:
		store, err := badger.NewEventStore(badger.DefaultConfig(), badger.WithDir(path))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open journal: %w", err)
		}
		return store, store.Close, nil
	case journalSQLite:
		store, err := sqlite.NewEventStore(sqlite.DefaultConfig(), sqlite.WithPath(path))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open journal: %w", err)
		}
		return store, store.Close, nil
	case journalPostgres:
		store, err := postgres.Open(ctx, postgres.DefaultConfig(), postgres.WithDSN(path))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open journal: %w", err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown journal backend %q (want %s, %s or %s)",
			backend, journalBadger, journalSQLite, journalPostgres)
	}
}

// inspectOptions holds options for the inspect command.
type inspectOptions struct {
	journalDir     string
	journalBackend string
	stats          bool
	since          time.Duration
	outputJSON     bool
}

// newInspectCmd creates the inspect command.
func (a *App) newInspectCmd() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect [session]",
		Short: "Inspect the event journal",
		Long: `Inspect the event journal written by replay --journal.

Without a session id, lists the journaled sessions with their event
counts. With a session id, shows the suggestions presented and suppressed
in that session. With --stats, aggregates every session per detector.

Examples:
  # List sessions
  suggest inspect --journal ./journal

  # List sessions of a sqlite journal
  suggest inspect --journal-backend sqlite --journal suggest.db

  # Per-detector statistics for the last week
  suggest inspect --journal ./journal --stats --since 168h

  # Summarize one session as JSON
  suggest inspect --journal ./journal run-to-cursor-demo --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.stats {
				if len(args) > 0 {
					return fmt.Errorf("--stats takes no session id")
				}
				return a.journalStats(cmd.Context(), opts)
			}
			if len(args) == 0 {
				return a.listSessions(cmd.Context(), opts)
			}
			return a.inspectSession(cmd.Context(), opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.journalDir, "journal", "", "Badger directory, sqlite file or postgres DSN of the event journal (required)")
	cmd.Flags().StringVar(&opts.journalBackend, "journal-backend", journalBadger, "Journal backend (badger, sqlite, postgres)")
	cmd.Flags().BoolVar(&opts.outputJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Aggregate every session per detector")
	cmd.Flags().DurationVar(&opts.since, "since", 0, "With --stats, only count events newer than this")

	_ = cmd.MarkFlagRequired("journal")

	return cmd
}

type sessionInfo struct {
	Session string `json:"session"`
	Events  int64  `json:"events"`
}

// listSessions prints every journaled session.
func (a *App) listSessions(ctx context.Context, opts *inspectOptions) error {
	store, closeStore, err := openJournal(ctx, opts.journalBackend, opts.journalDir)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	ids, err := store.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	sort.Strings(ids)

	infos := make([]sessionInfo, 0, len(ids))
	for _, id := range ids {
		n, err := store.CountEvents(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to count events of %s: %w", id, err)
		}
		infos = append(infos, sessionInfo{Session: id, Events: n})
	}

	if opts.outputJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	if len(infos) == 0 {
		_, _ = fmt.Fprintf(a.stdout, "No sessions journaled.\n")
		return nil
	}

	_, _ = fmt.Fprintf(a.stdout, "Sessions (%d):\n", len(infos))
	for _, info := range infos {
		_, _ = fmt.Fprintf(a.stdout, "  %s (%d events)\n", info.Session, info.Events)
	}
	return nil
}

// inspectSession prints the summary of one journaled session.
func (a *App) inspectSession(ctx context.Context, opts *inspectOptions, sessionID string) error {
	store, closeStore, err := openJournal(ctx, opts.journalBackend, opts.journalDir)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	summary, err := application.NewReplay(store).Summarize(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to summarize session: %w", err)
	}

	if opts.outputJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(newSummaryOutput(summary, 0))
	}

	_, _ = fmt.Fprintf(a.stdout, "Session: %s\n", summary.SessionID)
	_, _ = fmt.Fprintf(a.stdout, "  From: %s\n", summary.Start.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(a.stdout, "  To: %s\n", summary.End.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(a.stdout, "  Ended: %t\n", summary.Ended)

	_, _ = fmt.Fprintf(a.stdout, "\nPresented (%d):\n", len(summary.Presented))
	for _, s := range summary.Presented {
		_, _ = fmt.Fprintf(a.stdout, "  - [%s] %s: %s\n", s.Kind, s.DetectorID, s.Message)
	}

	if len(summary.Suppressed) > 0 {
		_, _ = fmt.Fprintf(a.stdout, "\nSuppressed:\n")
		for _, reason := range sortedReasons(summary.Suppressed) {
			_, _ = fmt.Fprintf(a.stdout, "  %s: %d\n", reason, summary.Suppressed[reason])
		}
	}
	return nil
}

// journalStats prints per-detector totals across the journal.
func (a *App) journalStats(ctx context.Context, opts *inspectOptions) error {
	store, closeStore, err := openJournal(ctx, opts.journalBackend, opts.journalDir)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	var filter analytics.Filter
	if opts.since > 0 {
		filter.FromTime = time.Now().Add(-opts.since)
	}

	summary, err := analytics.NewAggregator(store).Summary(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to aggregate journal: %w", err)
	}

	if opts.outputJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	_, _ = fmt.Fprintf(a.stdout, "Sessions: %d (%d ended)\n", summary.Sessions, summary.EndedSessions)
	_, _ = fmt.Fprintf(a.stdout, "Presented: %d\n", summary.Presented)
	_, _ = fmt.Fprintf(a.stdout, "Suppressed: %d\n", summary.Suppressed)

	if len(summary.Detectors) == 0 {
		return nil
	}
	_, _ = fmt.Fprintf(a.stdout, "\nDetectors:\n")
	for _, d := range summary.Detectors {
		_, _ = fmt.Fprintf(a.stdout, "  %s: %d presented, %d suppressed in %d sessions\n",
			d.DetectorID, d.Presented, d.SuppressedTotal(), d.Sessions)
	}
	return nil
}
