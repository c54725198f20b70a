package safety

// ConditionAdaptation holds the per-condition reduction factors and
// limits from the safety knowledge base. Reduction values are
// fractions in [0,1); RiskIncrease elevates the reported risk level of
// allowed poses.
type ConditionAdaptation struct {
	SpineExtensionReduction float64 `koanf:"spine_extension_reduction"`
	BackbendReduction       float64 `koanf:"backbend_reduction"`
	ForwardBendReduction    float64 `koanf:"forward_bend_reduction"`
	TwistReduction          float64 `koanf:"twist_reduction"`
	IntensityReduction      float64 `koanf:"intensity_reduction"`
	HoldDurationMax         int     `koanf:"hold_duration_max"`
	ForwardFoldDurationMax  int     `koanf:"forward_fold_duration_max"`
	InversionProhibited     bool    `koanf:"inversion_prohibited"`
	RiskIncrease            int     `koanf:"risk_increase"`
}

// Tables bundles the static safety knowledge: which conditions forbid
// which pose outright, and how the remaining conditions soften rules.
type Tables struct {
	Contraindications map[string][]string            `koanf:"contraindications"`
	Conditions        map[string]ConditionAdaptation `koanf:"conditions"`
}

// DefaultConditionTable returns the built-in condition adaptations
// used when the safety knowledge base carries none.
func DefaultConditionTable() map[string]ConditionAdaptation {
	return map[string]ConditionAdaptation{
		"back_pain": {
			SpineExtensionReduction: 0.20,
			BackbendReduction:       0.25,
			ForwardBendReduction:    0.15,
			HoldDurationMax:         8,
			RiskIncrease:            1,
		},
		"high_bp": {
			ForwardFoldDurationMax: 5,
			InversionProhibited:    true,
			HoldDurationMax:        5,
			RiskIncrease:           2,
		},
		"heart_ailments": {
			IntensityReduction: 0.30,
			HoldDurationMax:    5,
			BackbendReduction:  0.30,
			RiskIncrease:       2,
		},
		"recent_spinal_surgery": {
			SpineExtensionReduction: 0.50,
			BackbendReduction:       0.60,
			ForwardBendReduction:    0.40,
			TwistReduction:          0.50,
			RiskIncrease:            3,
		},
	}
}
