package bri

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ustawi/core"
)

func newTestValidator() *validator.Validate {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func TestNewWeightConfig_Validate(t *testing.T) {
	validate := newTestValidator()

	valid := NewWeightConfig{
		AttendanceWeight:  0.25,
		MarksWeight:       0.25,
		AssignmentsWeight: 0.20,
		SentimentWeight:   0.30,
		LowRiskThreshold:  0.33,
		HighRiskThreshold: 0.66,
	}

	tests := []struct {
		name    string
		mutate  func(*NewWeightConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(cfg *NewWeightConfig) {}},
		{
			name:   "sum slightly off within tolerance",
			mutate: func(cfg *NewWeightConfig) { cfg.SentimentWeight = 0.305 },
		},
		{
			name:    "weights sum too low",
			mutate:  func(cfg *NewWeightConfig) { cfg.SentimentWeight = 0.1 },
			wantErr: true,
		},
		{
			name:    "weights sum too high",
			mutate:  func(cfg *NewWeightConfig) { cfg.AttendanceWeight = 0.5 },
			wantErr: true,
		},
		{
			name: "negative weight",
			mutate: func(cfg *NewWeightConfig) {
				cfg.AttendanceWeight = -0.05
				cfg.MarksWeight = 0.55
			},
			wantErr: true,
		},
		{
			name: "equal thresholds",
			mutate: func(cfg *NewWeightConfig) {
				cfg.LowRiskThreshold = 0.5
				cfg.HighRiskThreshold = 0.5
			},
			wantErr: true,
		},
		{
			name: "inverted thresholds",
			mutate: func(cfg *NewWeightConfig) {
				cfg.LowRiskThreshold = 0.7
				cfg.HighRiskThreshold = 0.3
			},
			wantErr: true,
		},
		{
			name:    "threshold above 1",
			mutate:  func(cfg *NewWeightConfig) { cfg.HighRiskThreshold = 1.5 },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate(validate)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
