// Package detector provides the built-in suggestion detectors.
package detector

import (
	"fmt"

	"github.com/felixgeelhaar/suggest-go/domain/action"
	"github.com/felixgeelhaar/suggest-go/domain/detector"
	"github.com/felixgeelhaar/suggest-go/domain/language"
)

// Detector ids. They key settings and cooldown records.
const (
	IDUnwrap        = "unwrap"
	IDRunToCursor   = "run_to_cursor"
	IDFileStructure = "file_structure"
)

// Defaults returns one fresh instance of every built-in detector in
// registration order.
func Defaults() ([]detector.Detector, error) {
	unwrap, err := NewUnwrap()
	if err != nil {
		return nil, fmt.Errorf("unwrap detector: %w", err)
	}
	runToCursor, err := NewRunToCursor()
	if err != nil {
		return nil, fmt.Errorf("run to cursor detector: %w", err)
	}
	return []detector.Detector{unwrap, runToCursor, NewFileStructure()}, nil
}

// fileOf returns the parsed file of the editor a acted on, or nil when the
// editor is gone or has no file.
func fileOf(a action.Action) language.File {
	ed, ok := a.Editor.Resolve()
	if !ok || ed == nil {
		return nil
	}
	return ed.File()
}
