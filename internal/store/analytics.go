package store

import (
	"math"
	"sort"
	"time"
)

// Summary is derived entirely from the in-memory list.
type Summary struct {
	TotalCount     int             `json:"totalCount"`
	AverageLatency int64           `json:"averageLatency"` // rounded mean, ms
	AcceptanceRate int             `json:"acceptanceRate"` // rounded percent
	TopLanguages   []LanguageCount `json:"topLanguages"`
	DailySeries    []DailyCount    `json:"dailySeries"`
}

type LanguageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// Analytics computes aggregates over the current list: total count,
// rounded mean latency, acceptance percentage, the top five languages
// (ties keep first-encountered order), and a sparse daily series for
// the trailing seven calendar days including today.
func (s *Store) Analytics() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{TotalCount: len(s.items)}
	if len(s.items) == 0 {
		return sum
	}

	var latencyTotal int64
	accepted := 0
	var langOrder []string
	langCount := make(map[string]int)
	for _, in := range s.items {
		latencyTotal += in.LatencyMs
		if in.Accepted {
			accepted++
		}
		if _, seen := langCount[in.Language]; !seen {
			langOrder = append(langOrder, in.Language)
		}
		langCount[in.Language]++
	}
	sum.AverageLatency = int64(math.Round(float64(latencyTotal) / float64(len(s.items))))
	sum.AcceptanceRate = int(math.Round(float64(accepted) / float64(len(s.items)) * 100))

	// stable sort keeps first-encountered order for equal counts
	sort.SliceStable(langOrder, func(i, j int) bool {
		return langCount[langOrder[i]] > langCount[langOrder[j]]
	})
	if len(langOrder) > 5 {
		langOrder = langOrder[:5]
	}
	for _, l := range langOrder {
		sum.TopLanguages = append(sum.TopLanguages, LanguageCount{Language: l, Count: langCount[l]})
	}

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	windowStart := dayStart.AddDate(0, 0, -6)
	daily := make(map[string]int)
	for _, in := range s.items {
		ts := time.UnixMilli(in.Timestamp).In(now.Location())
		if ts.Before(windowStart) {
			continue
		}
		daily[ts.Format("2006-01-02")]++
	}
	dates := make([]string, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates {
		sum.DailySeries = append(sum.DailySeries, DailyCount{Date: d, Count: daily[d]})
	}
	return sum
}
