package segmenter

import "errors"

// ErrInvalidDuration indicates the media duration is missing, unreadable,
// not a finite number or not positive.
var ErrInvalidDuration = errors.New("invalid media duration")

// ErrInvalidChunkLength indicates the configured chunk length is out of range.
var ErrInvalidChunkLength = errors.New("invalid chunk length")

// ErrExtractionFailed indicates the transcoder failed to extract a window.
var ErrExtractionFailed = errors.New("window extraction failed")

// ErrFilesystem indicates a filesystem write or delete failed.
var ErrFilesystem = errors.New("filesystem error")
