package main

// InitRequest is the payload for /api/init: training docs plus model
// hyperparameters. Grounded on
// zautner-Atomic-GPT-explorer/api_types.go's InitRequest.
type InitRequest struct {
	Docs   []string `json:"docs"`
	Config Config   `json:"config"`
}

// TrainRequest controls one /api/train call.
type TrainRequest struct {
	StepsPerCall int `json:"steps_per_call"`
	BatchSize    int `json:"batch_size"`
}

// TrainResponse reports one training step summary.
type TrainResponse struct {
	Step          int     `json:"step"`
	Loss          float64 `json:"loss"`
	ContextChar   string  `json:"context_char"`
	TargetChar    string  `json:"target_char"`
	PredictedChar string  `json:"predicted_char"`
	TargetProb    float64 `json:"target_prob"`
	PredictedProb float64 `json:"predicted_prob"`
}

// GenerateOptions configures sampling for /api/generate and
// /api/generate_trace.
type GenerateOptions struct {
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k"`
	MinLen      int     `json:"min_len"`
}

// GenerateRequest wraps GenerateOptions for the JSON request body.
type GenerateRequest struct {
	Options GenerateOptions `json:"options"`
}

// TraceCandidate is one candidate token shown in a generation trace.
type TraceCandidate struct {
	Char    string  `json:"char"`
	TokenID int     `json:"token_id"`
	Logit   float64 `json:"logit"`
	Prob    float64 `json:"prob"`
}

// TraceStep explains one sampled generation position.
type TraceStep struct {
	Position   int              `json:"position"`
	Context    string           `json:"context"`
	TopK       []TraceCandidate `json:"top_k"`
	RandomU    float64          `json:"random_u"`
	ChosenChar string           `json:"chosen_char"`
	ChosenProb float64          `json:"chosen_prob"`
	ChosenRank int              `json:"chosen_rank"`
	CumBefore  float64          `json:"cum_before"`
	CumAfter   float64          `json:"cum_after"`
	Reason     string           `json:"reason"`
}

// GenerateTraceResponse is returned by /api/generate_trace.
type GenerateTraceResponse struct {
	Text       string      `json:"text"`
	Steps      []TraceStep `json:"steps"`
	StopReason string      `json:"stop_reason"`
}

// GradcheckRequest picks which built-in expression /api/gradcheck
// evaluates and at which point.
type GradcheckRequest struct {
	Expr string    `json:"expr"`
	At   []float64 `json:"at"`
}

// GradcheckResponse reports the analytic vs. finite-difference gradient
// comparison computed by gradcheckExpr.
type GradcheckResponse struct {
	Expr            string    `json:"expr"`
	Value           float64   `json:"value"`
	AnalyticGrad    []float64 `json:"analytic_grad"`
	FiniteDiff      []float64 `json:"finite_diff_grad"`
	MaxAbsError     float64   `json:"max_abs_error"`
	WithinTolerance bool      `json:"within_tolerance"`
}
