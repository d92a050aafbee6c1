package review

type Segment string

const (
	SegmentLow    Segment = "low"
	SegmentMiddle Segment = "middle"
	SegmentHigh   Segment = "high"
)

// Classify buckets a review by its two headline scores. Low is checked first
// and wins.
func Classify(overallStars, recommendScore int) Segment {
	if overallStars <= 3 || recommendScore <= 6 {
		return SegmentLow
	}
	if overallStars >= 4 && recommendScore >= 9 {
		return SegmentHigh
	}
	return SegmentMiddle
}
