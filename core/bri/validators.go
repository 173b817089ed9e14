package bri

import (
	"math"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ustawi/core"
)

var (
	// weightSumTolerance allows for float drift in administrator input.
	weightSumTolerance = 0.01

	weightSumTag  = "weights_sum"
	weightSumText = "weights must sum to 1.0"

	thresholdOrderTag  = "thresholds_ordered"
	thresholdOrderText = "low risk threshold must be strictly less than high risk threshold"
)

// InitValidators registers the weight configuration validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(weightConfigStructValidation, NewWeightConfig{})
	core.RegisterCustomTranslation(validate, translator, weightSumTag, weightSumText)
	core.RegisterCustomTranslation(validate, translator, thresholdOrderTag, thresholdOrderText)
}

// weightConfigStructValidation enforces the invariants individual field tags
// cannot express: the four weights sum to 1 within tolerance, and the two
// thresholds are strictly ordered.
func weightConfigStructValidation(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(NewWeightConfig)
	if !ok {
		return
	}

	sum := cfg.AttendanceWeight + cfg.MarksWeight + cfg.AssignmentsWeight + cfg.SentimentWeight
	if math.Abs(sum-1) > weightSumTolerance {
		sl.ReportError(cfg.AttendanceWeight, "attendance_weight", "AttendanceWeight", weightSumTag, "")
		sl.ReportError(cfg.MarksWeight, "marks_weight", "MarksWeight", weightSumTag, "")
		sl.ReportError(cfg.AssignmentsWeight, "assignments_weight", "AssignmentsWeight", weightSumTag, "")
		sl.ReportError(cfg.SentimentWeight, "sentiment_weight", "SentimentWeight", weightSumTag, "")
	}

	if cfg.LowRiskThreshold >= cfg.HighRiskThreshold {
		sl.ReportError(cfg.LowRiskThreshold, "low_risk_threshold", "LowRiskThreshold", thresholdOrderTag, "")
	}
}

// Validate applies field and struct level validation to nc.
func (nc NewWeightConfig) Validate(validate *validator.Validate) error {
	return validate.Struct(nc)
}
