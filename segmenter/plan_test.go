package segmenter

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytaudio/internal/timeutil"
	"ytaudio/models"
)

func TestPlanWindows_NoSplit(t *testing.T) {
	tests := []struct {
		name  string
		total float64
	}{
		{"short", 60},
		{"fractional", 30.53},
		{"exactly chunk length", 2100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows, err := PlanWindows(tt.total, DefaultChunkLength)
			require.NoError(t, err)
			require.Len(t, windows, 1)
			assert.Equal(t, models.SegmentWindow{Index: 1, Start: 0, Length: tt.total}, windows[0])
		})
	}
}

func TestPlanWindows_TwoHours(t *testing.T) {
	windows, err := PlanWindows(7200, 2100)
	require.NoError(t, err)

	expected := []models.SegmentWindow{
		{Index: 1, Start: 0, Length: 2100},
		{Index: 2, Start: 2100, Length: 2100},
		{Index: 3, Start: 4200, Length: 2100},
		{Index: 4, Start: 6300, Length: 900},
	}
	assert.Equal(t, expected, windows)
}

func TestPlanWindows_Properties(t *testing.T) {
	cases := []struct {
		total float64
		chunk float64
		// want overrides ceil(total/chunk) when a sub-millisecond tail is folded
		want int
	}{
		{2100.5, 2100, 0},
		{4200, 2100, 0},
		{4200.001, 2100, 0},
		{4200.0004, 2100, 2},
		{6300.000499, 2100, 3},
		{30.53, 10, 0},
		{86399.9, 600, 0},
		{10000, 1, 0},
		{123.456, 7, 0},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%v/%v", tc.total, tc.chunk), func(t *testing.T) {
			windows, err := PlanWindows(tc.total, tc.chunk)
			require.NoError(t, err)

			expectedCount := int(math.Ceil(tc.total / tc.chunk))
			if tc.want > 0 {
				expectedCount = tc.want
			}
			require.Len(t, windows, expectedCount)

			last := windows[len(windows)-1]
			expectedLast := tc.total - float64(expectedCount-1)*tc.chunk
			assert.InDelta(t, expectedLast, last.Length, 1e-6)
			assert.GreaterOrEqual(t, last.Length, TailTolerance)
			assert.Less(t, last.Length, tc.chunk+TailTolerance)
			assert.InDelta(t, tc.total, last.End(), 1e-9)

			for i := 0; i < len(windows)-1; i++ {
				assert.Equal(t, windows[i].Start+windows[i].Length, windows[i+1].Start,
					"window %d must end where window %d starts", i+1, i+2)
				assert.Equal(t, tc.chunk, windows[i].Length)
			}

			assert.NoError(t, ValidateWindows(windows, tc.total))
		})
	}
}

func TestPlanWindows_LargeChunk(t *testing.T) {
	windows, err := PlanWindows(7200, 30*24*3600)
	require.NoError(t, err)
	assert.Equal(t, []models.SegmentWindow{{Index: 1, Start: 0, Length: 7200}}, windows)
}

func TestPlanWindows_TailRendersAsMilliseconds(t *testing.T) {
	windows, err := PlanWindows(4200.0004, 2100)
	require.NoError(t, err)

	for _, w := range windows {
		assert.NotEqual(t, "00:00:00.000", timeutil.FormatSeconds(w.Length),
			"window %d would be extracted with a zero duration", w.Index)
	}
}

func TestPlanWindows_InvalidDuration(t *testing.T) {
	for _, total := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		t.Run(fmt.Sprintf("%v", total), func(t *testing.T) {
			_, err := PlanWindows(total, DefaultChunkLength)
			assert.ErrorIs(t, err, ErrInvalidDuration)
		})
	}
}

func TestPlanWindows_InvalidChunkLength(t *testing.T) {
	for _, chunk := range []float64{0, -10, 0.5, math.Inf(1), math.NaN()} {
		t.Run(fmt.Sprintf("%v", chunk), func(t *testing.T) {
			_, err := PlanWindows(7200, chunk)
			assert.ErrorIs(t, err, ErrInvalidChunkLength)
		})
	}
}

func TestValidateWindows(t *testing.T) {
	tests := []struct {
		name    string
		windows []models.SegmentWindow
		total   float64
		wantErr string
	}{
		{
			name:    "empty",
			windows: nil,
			total:   10,
			wantErr: "window list is empty",
		},
		{
			name: "gap",
			windows: []models.SegmentWindow{
				{Index: 1, Start: 0, Length: 5},
				{Index: 2, Start: 6, Length: 4},
			},
			total:   10,
			wantErr: "not contiguous",
		},
		{
			name: "overlap",
			windows: []models.SegmentWindow{
				{Index: 1, Start: 0, Length: 6},
				{Index: 2, Start: 5, Length: 5},
			},
			total:   10,
			wantErr: "not contiguous",
		},
		{
			name: "wrong index",
			windows: []models.SegmentWindow{
				{Index: 1, Start: 0, Length: 5},
				{Index: 3, Start: 5, Length: 5},
			},
			total:   10,
			wantErr: "incorrect index",
		},
		{
			name: "short coverage",
			windows: []models.SegmentWindow{
				{Index: 1, Start: 0, Length: 5},
			},
			total:   10,
			wantErr: "expected 10.000",
		},
		{
			name: "late start",
			windows: []models.SegmentWindow{
				{Index: 1, Start: 1, Length: 9},
			},
			total:   10,
			wantErr: "expected 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, ValidateWindows(tt.windows, tt.total), tt.wantErr)
		})
	}
}
