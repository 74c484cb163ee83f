package protocol

import (
	"vbtlab/domain/core"
)

// Split strategies and CV methods supported by the planner.
const (
	StrategyParticipantStratified = "participant_stratified"
	MethodLeaveOneParticipantOut  = "leave_one_participant_out"
)

// MLTrainingProtocol is the validation protocol a downstream modeling study
// must follow when consuming a generated dataset. Like CollectionProtocol it
// is a typed record validated at construction; it declares how models are to
// be trained and evaluated but performs no fitting itself.
type MLTrainingProtocol struct {
	DataSplitting      DataSplitting      `json:"data_splitting"`
	CrossValidation    CrossValidation    `json:"cross_validation"`
	FeatureEngineering FeatureEngineering `json:"feature_engineering"`
	ModelSelection     ModelSelection     `json:"model_selection"`
	ModelValidation    ModelValidation    `json:"model_validation"`
	ReportingStandards ReportingStandards `json:"reporting_standards"`
}

// DataSplitting declares the leakage-free split: partitioning happens at the
// participant level so no participant's measurements appear in two splits.
type DataSplitting struct {
	Strategy                string   `json:"strategy"`
	TrainRatio              float64  `json:"train_ratio"`
	ValidationRatio         float64  `json:"validation_ratio"`
	TestRatio               float64  `json:"test_ratio"`
	StratificationVariables []string `json:"stratification_variables"`
}

// Ratios returns the split proportions as a plannable value.
func (d DataSplitting) Ratios() SplitRatios {
	return SplitRatios{
		Train:      d.TrainRatio,
		Validation: d.ValidationRatio,
		Test:       d.TestRatio,
	}
}

// CrossValidation declares the designated evaluation scheme.
type CrossValidation struct {
	Method             string   `json:"method"`
	InnerCVFolds       int      `json:"inner_cv_folds"`
	PerformanceMetrics []string `json:"performance_metrics"`
}

// FeatureEngineering declares the transformations applied before modeling.
type FeatureEngineering struct {
	AnthropometricNormalization bool     `json:"anthropometric_normalization"`
	ExerciseSpecificScaling     bool     `json:"exercise_specific_scaling"`
	TemporalFeatures            []string `json:"temporal_features"`
	InteractionTerms            []string `json:"interaction_terms"`
}

// ModelSelection declares the candidate model families and tuning strategy.
type ModelSelection struct {
	BaselineModels             []string `json:"baseline_models"`
	AdvancedModels             []string `json:"advanced_models"`
	EnsembleMethods            []string `json:"ensemble_methods"`
	HyperparameterOptimization string   `json:"hyperparameter_optimization"`
}

// ModelValidation declares the validation tiers a model must pass.
type ModelValidation struct {
	InternalValidation string `json:"internal_validation"`
	ExternalValidation string `json:"external_validation"`
	ClinicalValidation string `json:"clinical_validation"`
	Generalizability   string `json:"generalizability"`
}

// ReportingStandards declares the publication guidelines the study follows.
type ReportingStandards struct {
	MLReporting          string `json:"ml_reporting"`
	StatisticalReporting string `json:"statistical_reporting"`
	CodeAvailability     string `json:"code_availability"`
	DataSharing          string `json:"data_sharing"`
}

// DefaultMLTrainingProtocol returns the published validation protocol.
func DefaultMLTrainingProtocol() MLTrainingProtocol {
	return MLTrainingProtocol{
		DataSplitting: DataSplitting{
			Strategy:        StrategyParticipantStratified,
			TrainRatio:      0.70,
			ValidationRatio: 0.15,
			TestRatio:       0.15,
			StratificationVariables: []string{
				"age_group", "training_experience", "exercise",
			},
		},
		CrossValidation: CrossValidation{
			Method:       MethodLeaveOneParticipantOut,
			InnerCVFolds: 5,
			PerformanceMetrics: []string{
				"rmse", "mae", "r2", "icc", "bland_altman_agreement",
			},
		},
		FeatureEngineering: FeatureEngineering{
			AnthropometricNormalization: true,
			ExerciseSpecificScaling:     true,
			TemporalFeatures:            []string{"velocity_profiles", "fatigue_indices"},
			InteractionTerms:            []string{"load_x_experience", "anthropometry_x_exercise"},
		},
		ModelSelection: ModelSelection{
			BaselineModels:             []string{"linear_regression", "random_forest"},
			AdvancedModels:             []string{"gradient_boosting", "neural_networks"},
			EnsembleMethods:            []string{"stacking", "voting"},
			HyperparameterOptimization: "bayesian_optimization",
		},
		ModelValidation: ModelValidation{
			InternalValidation: "Cross-validation",
			ExternalValidation: "Independent test set",
			ClinicalValidation: "Expert agreement",
			Generalizability:   "Multi-site validation",
		},
		ReportingStandards: ReportingStandards{
			MLReporting:          "TRIPOD-ML guidelines",
			StatisticalReporting: "CONSORT-AI extension",
			CodeAvailability:     "Open source repository",
			DataSharing:          "Anonymized dataset available",
		},
	}
}

// Validate checks the protocol definition for schema violations.
func (p MLTrainingProtocol) Validate() error {
	if p.DataSplitting.Strategy != StrategyParticipantStratified {
		return core.NewProtocolError("data_splitting.strategy",
			"only participant_stratified splitting avoids leakage")
	}
	if err := p.DataSplitting.Ratios().Validate(); err != nil {
		return err
	}
	if p.CrossValidation.Method != MethodLeaveOneParticipantOut {
		return core.NewProtocolError("cross_validation.method",
			"leave_one_participant_out is the designated evaluation")
	}
	if p.CrossValidation.InnerCVFolds < 2 {
		return core.NewProtocolError("cross_validation.inner_cv_folds", "must be at least 2")
	}
	if len(p.CrossValidation.PerformanceMetrics) == 0 {
		return core.NewProtocolError("cross_validation.performance_metrics", "cannot be empty")
	}
	if len(p.ModelSelection.BaselineModels) == 0 {
		return core.NewProtocolError("model_selection.baseline_models", "cannot be empty")
	}
	return nil
}
