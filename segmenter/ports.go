package segmenter

import "context"

// Extractor copies one time range of a media file into a new file without
// re-encoding. A non-nil error means the range was not (fully) written.
type Extractor interface {
	Extract(ctx context.Context, inputPath string, start, length float64, outputPath string) error
}

// DurationProbe reports the duration of a media file in seconds.
//
// This interface decouples the segmenter from ffprobe, making it testable
// without media files on disk.
type DurationProbe interface {
	Duration(ctx context.Context, inputPath string) (float64, error)
}
