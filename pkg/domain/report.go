package domain

// TaskFailure records a task that failed during a run.
type TaskFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
	Fatal bool   `json:"fatal,omitempty"`
}

// ExecutionReport summarises one run invocation.
type ExecutionReport struct {
	RunID   string `json:"run_id"`
	Project string `json:"project"`

	Done    int `json:"done"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`

	Failures []TaskFailure `json:"failures,omitempty"`

	Stage  Stage `json:"stage"`
	Cursor int   `json:"cursor"`
	Total  int   `json:"total"`

	// AwaitingReview is set when the run suspended at the human checkpoint.
	AwaitingReview bool   `json:"awaiting_review,omitempty"`
	ResumeToken    string `json:"resume_token,omitempty"`
}
