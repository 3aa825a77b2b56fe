package suggestion

import "context"

// Session identifies the editing session a suggestion belongs to.
type Session struct {
	// ID is the host's identifier for the session (typically a project).
	ID string `json:"id"`

	// Name is a human-readable label.
	Name string `json:"name,omitempty"`
}

// Presenter shows suggestions to the user. Present is fire-and-forget from
// the engine's point of view: a returned error is logged, never retried.
type Presenter interface {
	Present(ctx context.Context, session Session, s Suggestion) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ctx context.Context, session Session, s Suggestion) error

// Present implements Presenter.
func (f PresenterFunc) Present(ctx context.Context, session Session, s Suggestion) error {
	return f(ctx, session, s)
}

// MultiPresenter forwards every suggestion to each presenter in order and
// returns the first error.
type MultiPresenter []Presenter

// Present implements Presenter.
func (m MultiPresenter) Present(ctx context.Context, session Session, s Suggestion) error {
	var first error
	for _, p := range m {
		if err := p.Present(ctx, session, s); err != nil && first == nil {
			first = err
		}
	}
	return first
}
