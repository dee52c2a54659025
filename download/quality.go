package download

import (
	"fmt"
	"strconv"
	"strings"
)

// Quality is a maximum video height such as "720p", or "best".
type Quality string

const QualityBest Quality = "best"

// Qualities lists the accepted values in descending order.
var Qualities = []Quality{"best", "1080p", "720p", "480p", "360p", "240p", "144p"}

// ParseQuality normalizes s. The second value is false when s is not one of
// Qualities, in which case QualityBest is returned.
func ParseQuality(s string) (Quality, bool) {
	q := Quality(strings.ToLower(strings.TrimSpace(s)))
	if q == "" {
		return QualityBest, true
	}
	for _, known := range Qualities {
		if q == known {
			return q, true
		}
	}
	return QualityBest, false
}

// Height returns the pixel limit of q, or 0 for best.
func (q Quality) Height() int {
	if q == QualityBest {
		return 0
	}
	h, err := strconv.Atoi(strings.TrimSuffix(string(q), "p"))
	if err != nil {
		return 0
	}
	return h
}

// QualityNames returns the accepted values joined for help text.
func QualityNames() string {
	names := make([]string, len(Qualities))
	for i, q := range Qualities {
		names[i] = string(q)
	}
	return strings.Join(names, ", ")
}

// FormatSelector returns the yt-dlp format expression for a request.
func FormatSelector(q Quality, audioOnly bool) string {
	if audioOnly {
		return "bestaudio/best"
	}
	if h := q.Height(); h > 0 {
		return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best", h)
	}
	return "bestvideo+bestaudio/best"
}
