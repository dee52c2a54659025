// Package models provides core data structures shared by the ytaudio packages.
package models

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

// PartSuffix separates the source basename from the part number in output names.
const PartSuffix = "_part"

// SegmentWindow is a contiguous time range of the source media mapped to one
// output file.
//
// Index is 1-based. For a chunk length C the invariants are
// Start = (Index-1)*C and Length = min(C, total-Start).
type SegmentWindow struct {
	Index  int     `json:"index"`
	Start  float64 `json:"start"`
	Length float64 `json:"length"`
}

// End returns the exclusive end of the window in seconds.
func (w SegmentWindow) End() float64 {
	return w.Start + w.Length
}

// Validate checks that the window has a positive index, a non-negative start
// and a positive, finite length.
func (w SegmentWindow) Validate() error {
	if w.Index < 1 {
		return fmt.Errorf("index must be at least 1, got %d", w.Index)
	}
	if w.Start < 0 || math.IsNaN(w.Start) || math.IsInf(w.Start, 0) {
		return fmt.Errorf("start must be a non-negative number, got %v", w.Start)
	}
	if w.Length <= 0 || math.IsNaN(w.Length) || math.IsInf(w.Length, 0) {
		return fmt.Errorf("length must be positive, got %v", w.Length)
	}
	return nil
}

// String returns a human-readable representation for logging.
func (w SegmentWindow) String() string {
	return fmt.Sprintf("window %d: [%.3f, %.3f)", w.Index, w.Start, w.End())
}

// OutputFile is a file produced for one window.
type OutputFile struct {
	Window SegmentWindow `json:"window"`
	Path   string        `json:"path"`
}

// PartName returns the output path for the part with the given index:
// <dir>/<basename>_part<NN>.<ext>, with NN zero padded to two digits.
//
// When dir is empty the directory of inputPath is used.
//
// Example:
//
//	PartName("/music/talk.m4a", "", 3)  // "/music/talk_part03.m4a"
func PartName(inputPath, dir string, index int) string {
	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	return filepath.Join(dir, fmt.Sprintf("%s%s%02d%s", stem, PartSuffix, index, ext))
}
