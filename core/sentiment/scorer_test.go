package sentiment

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantScore float64
		wantLabel Label
	}{
		{name: "empty", text: "", wantScore: 0.5, wantLabel: LabelNeutral},
		{name: "whitespace only", text: "  \t\n ", wantScore: 0.5, wantLabel: LabelNeutral},
		{name: "no lexicon hits", text: "the lecture covered chapter nine", wantScore: 0.5, wantLabel: LabelNeutral},
		{name: "single positive", text: "good", wantScore: 0.6, wantLabel: LabelPositive},
		{name: "single negative", text: "terrible", wantScore: 0.35, wantLabel: LabelNegative},
		{name: "single stress word", text: "exhausted", wantScore: 0.3, wantLabel: LabelNegative},
		{name: "case insensitive", text: "GREAT", wantScore: 0.6, wantLabel: LabelPositive},
		{name: "two stress words", text: "I am stressed and overwhelmed", wantScore: 0.1, wantLabel: LabelNegative},
		{name: "mixed", text: "happy but tired", wantScore: 0.4, wantLabel: LabelNeutral},
		{name: "clamped high", text: "good great excellent amazing wonderful fantastic happy", wantScore: 1, wantLabel: LabelPositive},
		{name: "clamped low", text: "stressed overwhelmed anxious worried tired exhausted", wantScore: 0, wantLabel: LabelNegative},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotScore, gotLabel := Score(tt.text)
			if !almostEqual(gotScore, tt.wantScore) {
				t.Errorf("Score() score = %v, want %v", gotScore, tt.wantScore)
			}
			if gotLabel != tt.wantLabel {
				t.Errorf("Score() label = %v, want %v", gotLabel, tt.wantLabel)
			}
		})
	}
}

func TestLabelFor_boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Label
	}{
		{0.6, LabelPositive},
		{0.59, LabelNeutral},
		{0.4, LabelNeutral},
		{0.39, LabelNegative},
		{0, LabelNegative},
		{1, LabelPositive},
	}
	for _, tt := range tests {
		if got := LabelFor(tt.score); got != tt.want {
			t.Errorf("LabelFor(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
