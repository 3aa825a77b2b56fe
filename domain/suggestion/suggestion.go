// Package suggestion provides the suggestion values emitted by detectors.
package suggestion

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies suggestions.
type Kind string

const (
	KindNone          Kind = ""              // Nothing to show
	KindTip           Kind = "tip"           // Popup linking to a bundled tip
	KindDocumentation Kind = "documentation" // Popup linking to online docs
)

// Suggestion is an immutable description of what, if anything, to show the
// user. The zero value is None.
type Suggestion struct {
	// ID is the unique identifier of a positive suggestion.
	ID string `json:"id,omitempty"`

	// Kind classifies the suggestion.
	Kind Kind `json:"kind"`

	// Message is the popup text.
	Message string `json:"message,omitempty"`

	// DetectorID identifies the detector that produced the suggestion.
	DetectorID string `json:"detector_id,omitempty"`

	// TipResource names the tip file shown for KindTip.
	TipResource string `json:"tip_resource,omitempty"`

	// DocURL is the documentation link shown for KindDocumentation.
	DocURL string `json:"doc_url,omitempty"`

	// CreatedAt is when the detector produced the suggestion.
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// None is the absence of a suggestion.
var None = Suggestion{}

// NewTip creates a tip suggestion.
func NewTip(message, detectorID, tipResource string) Suggestion {
	return Suggestion{
		ID:          uuid.New().String(),
		Kind:        KindTip,
		Message:     message,
		DetectorID:  detectorID,
		TipResource: tipResource,
		CreatedAt:   time.Now(),
	}
}

// NewDocumentation creates a documentation suggestion.
func NewDocumentation(message, detectorID, docURL string) Suggestion {
	return Suggestion{
		ID:         uuid.New().String(),
		Kind:       KindDocumentation,
		Message:    message,
		DetectorID: detectorID,
		DocURL:     docURL,
		CreatedAt:  time.Now(),
	}
}

// IsNone reports whether s carries nothing to show.
func (s Suggestion) IsNone() bool {
	return s.Kind == KindNone
}

// Link returns the tip resource or documentation URL, whichever applies.
func (s Suggestion) Link() string {
	switch s.Kind {
	case KindTip:
		return s.TipResource
	case KindDocumentation:
		return s.DocURL
	default:
		return ""
	}
}
