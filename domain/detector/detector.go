// Package detector defines the contract shared by every suggestion detector.
package detector

import (
	"slices"

	"github.com/felixgeelhaar/suggest-go/domain/history"
	"github.com/felixgeelhaar/suggest-go/domain/language"
	"github.com/felixgeelhaar/suggest-go/domain/suggestion"
)

// Descriptor holds the static metadata of a detector.
type Descriptor struct {
	// ID keys settings and cooldown records.
	ID string

	// DisplayName is the name of the advertised feature.
	DisplayName string

	// Languages lists the language ids the detector runs for.
	// language.AnyLanguage matches every supported language.
	Languages []string
}

// Supports reports whether the detector runs for lang.
func (d Descriptor) Supports(lang string) bool {
	return slices.Contains(d.Languages, language.AnyLanguage) || slices.Contains(d.Languages, lang)
}

// Detector is a stateful pattern matcher over the action history.
//
// Detect is called once per accepted action with the full history and the
// capability resolved for the most recent action's language. It must not
// block and must never panic on absent data; anything it cannot interpret
// yields suggestion.None.
type Detector interface {
	Descriptor() Descriptor

	Detect(actions *history.History, lang language.Capability) suggestion.Suggestion

	// Reset returns the detector to its initial state.
	Reset()
}

// Settings is the read-only view of user preferences the engine consults.
type Settings interface {
	// IsEnabled reports whether the detector with id may run.
	IsEnabled(id string) bool

	// SuggestingIntervalDays is the minimum number of days between two
	// presented suggestions of the same detector.
	SuggestingIntervalDays() int
}

// StaticSettings is a fixed Settings value.
type StaticSettings struct {
	Disabled     []string
	IntervalDays int
}

// IsEnabled implements Settings.
func (s StaticSettings) IsEnabled(id string) bool {
	return !slices.Contains(s.Disabled, id)
}

// SuggestingIntervalDays implements Settings.
func (s StaticSettings) SuggestingIntervalDays() int {
	return s.IntervalDays
}
