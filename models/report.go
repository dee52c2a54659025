package models

import (
	"fmt"
	"strings"
)

// RunReport summarises the files one invocation produced.
//
// Downloaded is the file fetched from YouTube (or the local input). Transcoded
// is set when the audio was re-encoded. Parts lists the split outputs; a run
// without splitting has a single part pointing at the final file.
type RunReport struct {
	Source     string       `json:"source"`
	Title      string       `json:"title,omitempty"`
	Downloaded string       `json:"downloaded"`
	Transcoded string       `json:"transcoded,omitempty"`
	Duration   float64      `json:"duration"`
	Parts      []OutputFile `json:"parts"`
}

// FinalPath returns the path of the file that the split step operated on.
func (r *RunReport) FinalPath() string {
	if r.Transcoded != "" {
		return r.Transcoded
	}
	return r.Downloaded
}

// WasSplit reports whether the run produced more than one part.
func (r *RunReport) WasSplit() bool {
	return len(r.Parts) > 1
}

// Validate checks the report for consistency.
//
// Returns an error if:
//   - Downloaded is empty
//   - Parts are not numbered 1..n
//   - an unsplit run has a part that is not the final file
func (r *RunReport) Validate() error {
	if strings.TrimSpace(r.Downloaded) == "" {
		return fmt.Errorf("downloaded path cannot be empty")
	}

	for i, part := range r.Parts {
		if part.Window.Index != i+1 {
			return fmt.Errorf("part %d has index %d", i+1, part.Window.Index)
		}
		if strings.TrimSpace(part.Path) == "" {
			return fmt.Errorf("part %d has an empty path", i+1)
		}
	}

	if len(r.Parts) == 1 && r.Parts[0].Path != r.FinalPath() {
		return fmt.Errorf("single part %s does not match final file %s", r.Parts[0].Path, r.FinalPath())
	}

	return nil
}
