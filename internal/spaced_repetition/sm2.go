package spaced_repetition

import "math"

// MinEaseFactor is the SM-2 floor for the ease factor. There is no ceiling.
const MinEaseFactor = 1.3

// QualityResponse represents the quality of response in SM-2
type QualityResponse int

const (
	// Complete blackout, unable to recall
	QualityBlackout QualityResponse = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect QualityResponse = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar QualityResponse = 2
	// Correct response but required significant effort
	QualityCorrectDifficult QualityResponse = 3
	// Correct response after some hesitation
	QualityCorrectHesitation QualityResponse = 4
	// Perfect response with no hesitation
	QualityPerfect QualityResponse = 5
)

// Valid reports whether q lies in [0, 5]
func (q QualityResponse) Valid() bool {
	return q >= QualityBlackout && q <= QualityPerfect
}

// CalculateEaseFactor applies the SM-2 ease update
//
//	EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02))
//
// and clamps the result to MinEaseFactor.
func CalculateEaseFactor(currentEF float64, quality QualityResponse) float64 {
	miss := 5.0 - float64(quality)
	newEF := currentEF + (0.1 - miss*(0.08+miss*0.02))
	if newEF < MinEaseFactor {
		newEF = MinEaseFactor
	}
	return newEF
}

// CalculateNextInterval returns the interval in days for the given repetition.
// The 1st repetition is 1 day, the 2nd is 6 days, later ones grow by the ease factor.
func CalculateNextInterval(repetitionNumber int, easeFactor float64, previousIntervalDays int) int {
	switch {
	case repetitionNumber <= 1:
		return 1
	case repetitionNumber == 2:
		return 6
	}

	if previousIntervalDays < 1 {
		previousIntervalDays = 1
	}
	next := int(math.Round(float64(previousIntervalDays) * easeFactor))
	if next < 1 {
		next = 1
	}
	return next
}

// PerformanceToQuality maps an aggregate correctness ratio onto the 0-5 scale
func PerformanceToQuality(correctRatio float64) QualityResponse {
	if math.IsNaN(correctRatio) || correctRatio < 0 {
		correctRatio = 0
	}
	if correctRatio > 1 {
		correctRatio = 1
	}
	return QualityResponse(math.Round(correctRatio * 5))
}
