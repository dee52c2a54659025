package segmenter

import (
	"fmt"
	"math"

	"ytaudio/models"
)

const (
	// DefaultChunkLength is the default window length in seconds (35 minutes)
	DefaultChunkLength = 2100

	// MinChunkLength is the minimum allowed window length in seconds
	MinChunkLength = 1

	// TailTolerance is the shortest trailing window worth extracting. Cut
	// points are passed to ffmpeg in milliseconds, so a shorter remainder is
	// folded into the previous window.
	TailTolerance = 0.0005

	// lengthEpsilon is the float tolerance used when comparing window edges.
	lengthEpsilon = 1e-9
)

// PlanWindows computes the ordered windows covering [0, total).
//
// When total <= chunkLength a single window spanning the whole file is
// returned. Otherwise ceil(total/chunkLength) windows are returned where every
// window but the last has length chunkLength and the last holds the rest.
// A remainder under TailTolerance does not get its own window; the last
// window ends at total instead.
//
// Example:
//
//	windows, _ := PlanWindows(7200, 2100)
//	// [0,2100) [2100,4200) [4200,6300) [6300,7200)
func PlanWindows(total, chunkLength float64) ([]models.SegmentWindow, error) {
	if err := validateChunkLength(chunkLength); err != nil {
		return nil, err
	}
	if err := validateDuration(total); err != nil {
		return nil, err
	}

	if total <= chunkLength {
		return []models.SegmentWindow{{Index: 1, Start: 0, Length: total}}, nil
	}

	count := int(math.Ceil(total / chunkLength))
	if count > 1 && total-float64(count-1)*chunkLength < TailTolerance {
		count--
	}

	windows := make([]models.SegmentWindow, 0, count)
	for i := 1; i <= count; i++ {
		start := float64(i-1) * chunkLength
		length := chunkLength
		if i == count {
			length = total - start
		}

		w := models.SegmentWindow{Index: i, Start: start, Length: length}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("invalid window %d: %w", i, err)
		}
		windows = append(windows, w)
	}

	return windows, nil
}

// ValidateWindows checks a plan for completeness against the total duration:
// sequential 1-based indices, no gaps or overlaps, and an end equal to total.
func ValidateWindows(windows []models.SegmentWindow, total float64) error {
	if len(windows) == 0 {
		return fmt.Errorf("window list is empty")
	}

	for i, w := range windows {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("window %d is invalid: %w", i+1, err)
		}
		if w.Index != i+1 {
			return fmt.Errorf("window %d has incorrect index %d", i+1, w.Index)
		}
	}

	if windows[0].Start != 0 {
		return fmt.Errorf("first window starts at %.3f, expected 0", windows[0].Start)
	}

	for i := 0; i < len(windows)-1; i++ {
		end := windows[i].End()
		next := windows[i+1].Start
		if math.Abs(end-next) > lengthEpsilon*math.Max(1, next) {
			return fmt.Errorf("windows %d and %d are not contiguous: %.3f != %.3f",
				i+1, i+2, end, next)
		}
	}

	last := windows[len(windows)-1].End()
	if math.Abs(last-total) > lengthEpsilon*math.Max(1, total) {
		return fmt.Errorf("windows end at %.3f, expected %.3f", last, total)
	}

	return nil
}

func validateDuration(total float64) error {
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
		return fmt.Errorf("%w: %v seconds", ErrInvalidDuration, total)
	}
	return nil
}

func validateChunkLength(chunkLength float64) error {
	if math.IsNaN(chunkLength) || math.IsInf(chunkLength, 0) || chunkLength < MinChunkLength {
		return fmt.Errorf("%w: must be a finite number of at least %d seconds, got %v", ErrInvalidChunkLength, MinChunkLength, chunkLength)
	}
	return nil
}
