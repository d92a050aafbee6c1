package review

import (
	"github.com/shopspring/decimal"
)

type Summary struct {
	Count          int             `json:"count"`
	Segments       map[Segment]int `json:"segments"`
	AverageOverall decimal.Decimal `json:"average_overall_stars"`
	NPS            decimal.Decimal `json:"nps"`
	Promoters      int             `json:"promoters"`
	Detractors     int             `json:"detractors"`
}

// Summarize aggregates stored scores.
//
// Rules:
// - AverageOverall is the mean of overall_stars rounded to 2 places.
// - NPS is the percentage of promoters (9-10) minus detractors (0-6), rounded to 1 place.
// - An empty set yields zeros.
func Summarize(scores []Score) Summary {
	s := Summary{Segments: map[Segment]int{SegmentLow: 0, SegmentMiddle: 0, SegmentHigh: 0}}
	if len(scores) == 0 {
		return s
	}

	stars := decimal.Zero
	for _, sc := range scores {
		s.Count++
		s.Segments[sc.Segment]++
		stars = stars.Add(decimal.NewFromInt(int64(sc.OverallStars)))
		switch {
		case sc.RecommendScore >= 9:
			s.Promoters++
		case sc.RecommendScore <= 6:
			s.Detractors++
		}
	}

	n := decimal.NewFromInt(int64(s.Count))
	s.AverageOverall = stars.Div(n).Round(2)
	s.NPS = decimal.NewFromInt(int64(s.Promoters - s.Detractors)).
		Mul(decimal.NewFromInt(100)).
		Div(n).
		Round(1)
	return s
}
