package suggestion

import "errors"

var (
	// ErrNoneSuggestion indicates a None suggestion was handed to a presenter.
	ErrNoneSuggestion = errors.New("cannot present an empty suggestion")

	// ErrPresenterClosed indicates the presenter no longer accepts suggestions.
	ErrPresenterClosed = errors.New("presenter is closed")
)
