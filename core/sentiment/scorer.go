package sentiment

import "strings"

// Lexicon scorer. The word sets and increments are contract: the BRI weight
// configuration is calibrated against this output distribution, so swapping
// in a statistical model requires recalibrating the thresholds too.
var (
	positiveWords = wordSet(
		"good", "great", "excellent", "amazing", "wonderful", "fantastic", "happy",
		"love", "best", "awesome", "perfect", "brilliant", "outstanding",
	)
	negativeWords = wordSet(
		"bad", "terrible", "awful", "horrible", "hate", "worst", "stupid",
		"useless", "boring", "frustrated", "angry", "sad", "disappointed",
	)
	// stress indicators weigh more than generic negativity: they feed
	// directly into burnout detection.
	stressWords = wordSet(
		"stressed", "overwhelmed", "anxious", "worried", "tired", "exhausted",
		"pressure", "burden", "difficult", "struggling", "burnout",
	)
)

const (
	neutralBaseline = 0.5

	positiveIncrement = 0.10
	negativeDecrement = 0.15
	stressDecrement   = 0.20
)

// Score maps free text to a sentiment score in [0,1] and a Label.
// It starts at the neutral baseline and walks whitespace-separated lowercased
// tokens; the running score is only clamped at the end so a long message can
// swing further before clamping. Empty or whitespace-only text is neutral.
func Score(text string) (float64, Label) {
	score := neutralBaseline
	for _, word := range strings.Fields(strings.ToLower(text)) {
		switch {
		case positiveWords[word]:
			score += positiveIncrement
		case negativeWords[word]:
			score -= negativeDecrement
		case stressWords[word]:
			score -= stressDecrement
		}
	}

	if score < 0 {
		score = 0
	} else if score > 1 {
		score = 1
	}
	return score, LabelFor(score)
}

// LabelFor derives the three-way label from a score.
func LabelFor(score float64) Label {
	switch {
	case score >= 0.6:
		return LabelPositive
	case score >= 0.4:
		return LabelNeutral
	default:
		return LabelNegative
	}
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
