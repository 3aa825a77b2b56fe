// Package presenter provides presenters that print or log suggestions,
// for the CLI and for hosts without a popup surface.
package presenter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
	"github.com/felixgeelhaar/suggest-go/infrastructure/logging"
)

// Format selects the writer presenter's line format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// WriterPresenter writes one line per suggestion.
type WriterPresenter struct {
	w      io.Writer
	format Format
	mu     sync.Mutex
}

// Option configures a WriterPresenter.
type Option func(*WriterPresenter)

// WithFormat sets the output format. Unknown formats fall back to text.
func WithFormat(f Format) Option {
	return func(p *WriterPresenter) {
		p.format = f
	}
}

// NewWriterPresenter creates a presenter writing to w.
func NewWriterPresenter(w io.Writer, opts ...Option) *WriterPresenter {
	p := &WriterPresenter{w: w, format: FormatText}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type line struct {
	Session    string          `json:"session"`
	DetectorID string          `json:"detector"`
	Kind       suggestion.Kind `json:"kind"`
	Message    string          `json:"message"`
	Link       string          `json:"link,omitempty"`
}

// Present implements suggestion.Presenter.
func (p *WriterPresenter) Present(_ context.Context, session suggestion.Session, s suggestion.Suggestion) error {
	if s.IsNone() {
		return suggestion.ErrNoneSuggestion
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.format == FormatJSON {
		return json.NewEncoder(p.w).Encode(line{
			Session:    session.ID,
			DetectorID: s.DetectorID,
			Kind:       s.Kind,
			Message:    s.Message,
			Link:       s.Link(),
		})
	}

	_, err := fmt.Fprintf(p.w, "[%s] %s: %s (%s)\n", s.Kind, s.DetectorID, s.Message, s.Link())
	return err
}

// LogPresenter reports suggestions through the structured logger.
type LogPresenter struct{}

// NewLogPresenter creates a presenter that logs at info level.
func NewLogPresenter() LogPresenter {
	return LogPresenter{}
}

// Present implements suggestion.Presenter.
func (LogPresenter) Present(_ context.Context, session suggestion.Session, s suggestion.Suggestion) error {
	if s.IsNone() {
		return suggestion.ErrNoneSuggestion
	}

	logging.Info().
		Add(logging.SessionID(session.ID)).
		Add(logging.DetectorID(s.DetectorID)).
		Add(logging.SuggestionKind(s)).
		Add(logging.Str("link", s.Link())).
		Msg(s.Message)
	return nil
}

var (
	_ suggestion.Presenter = (*WriterPresenter)(nil)
	_ suggestion.Presenter = LogPresenter{}
)
