package harness

// StepTrace records what a step compiled and loaded.
type StepTrace struct {
	Step   string   `json:"step"`
	SQL    string   `json:"sql,omitempty"`
	Inline string   `json:"inline,omitempty"`
	IDs    []string `json:"ids"`
	Count  int      `json:"count"`
	Error  string   `json:"error,omitempty"`

	items []map[string]any
	err   error
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: true if every expectation holds.
	Pass bool `json:"pass"`

	// Trace holds one entry per step, in order.
	Trace []StepTrace `json:"trace"`

	// Errors contains failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []StepTrace{},
		Errors: []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
