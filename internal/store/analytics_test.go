package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsEmpty(t *testing.T) {
	st := Open(filepath.Join(t.TempDir(), "interactions.json"), 10, nil)
	sum := st.Analytics()
	assert.Equal(t, 0, sum.TotalCount)
	assert.Equal(t, int64(0), sum.AverageLatency)
	assert.Equal(t, 0, sum.AcceptanceRate)
	assert.Empty(t, sum.TopLanguages)
	assert.Empty(t, sum.DailySeries)
}

func TestAnalyticsAverages(t *testing.T) {
	st := Open(filepath.Join(t.TempDir(), "interactions.json"), 10, nil)
	for i, lat := range []int64{100, 200, 300} {
		in := testInteraction(string(rune('a'+i)), int64(1000+i))
		in.LatencyMs = lat
		st.Append(in)
	}
	in := testInteraction("d", 2000)
	in.Accepted = false
	st.Append(in)

	sum := st.Analytics()
	assert.Equal(t, 4, sum.TotalCount)
	// (100+200+300+0)/4 = 150
	assert.Equal(t, int64(150), sum.AverageLatency)
	// 3 of 4 accepted
	assert.Equal(t, 75, sum.AcceptanceRate)
}

func TestAnalyticsTopLanguages(t *testing.T) {
	st := Open(filepath.Join(t.TempDir(), "interactions.json"), 20, nil)
	langs := []string{"go", "go", "python", "rust", "rust", "go", "ts", "java", "c", "lua"}
	for i, l := range langs {
		in := testInteraction(string(rune('a'+i)), int64(i))
		in.Language = l
		st.Append(in)
	}

	sum := st.Analytics()
	require.Len(t, sum.TopLanguages, 5)
	assert.Equal(t, LanguageCount{Language: "go", Count: 3}, sum.TopLanguages[0])
	assert.Equal(t, LanguageCount{Language: "rust", Count: 2}, sum.TopLanguages[1])
	// ties keep first-encountered order
	assert.Equal(t, "python", sum.TopLanguages[2].Language)
	assert.Equal(t, "ts", sum.TopLanguages[3].Language)
	assert.Equal(t, "java", sum.TopLanguages[4].Language)
}

func TestAnalyticsDailySeries(t *testing.T) {
	st := Open(filepath.Join(t.TempDir(), "interactions.json"), 20, nil)
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.Local)
	st.now = func() time.Time { return now }

	appendAt := func(id string, d time.Time) {
		st.Append(testInteraction(id, d.UnixMilli()))
	}
	appendAt("today1", now)
	appendAt("today2", now.Add(-time.Hour))
	appendAt("yesterday", now.AddDate(0, 0, -1))
	appendAt("edge", now.AddDate(0, 0, -6)) // still inside the window
	appendAt("tooOld", now.AddDate(0, 0, -8))

	sum := st.Analytics()
	// sparse series: only days with activity, ascending
	require.Len(t, sum.DailySeries, 3)
	assert.Equal(t, DailyCount{Date: "2026-03-04", Count: 1}, sum.DailySeries[0])
	assert.Equal(t, DailyCount{Date: "2026-03-09", Count: 1}, sum.DailySeries[1])
	assert.Equal(t, DailyCount{Date: "2026-03-10", Count: 2}, sum.DailySeries[2])
}

func TestAnalyticsRounding(t *testing.T) {
	st := Open(filepath.Join(t.TempDir(), "interactions.json"), 10, nil)
	for i, lat := range []int64{100, 101, 101} {
		in := testInteraction(string(rune('a'+i)), int64(i))
		in.LatencyMs = lat
		if i == 0 {
			in.Accepted = false
		}
		st.Append(in)
	}

	sum := st.Analytics()
	// 302/3 = 100.67 rounds to 101
	assert.Equal(t, int64(101), sum.AverageLatency)
	// 2/3 = 66.67% rounds to 67
	assert.Equal(t, 67, sum.AcceptanceRate)
}
