package models

// PipelineResult is the outcome of one "handle one user message" run.
// Exactly one of Content, DiffID or Error is meaningful: Content for a
// plain generator answer, DiffID when the reviewer approved a patch, and
// Error with the reviewer's final reasoning when the attempt budget ran
// out.
type PipelineResult struct {
	SessionID  string `json:"session_id"`
	Content    string `json:"content,omitempty"`
	DiffID     string `json:"diff_id,omitempty"`
	Patch      string `json:"patch,omitempty"`
	Attempts   int    `json:"attempts"`
	TokenUsage int    `json:"token_usage,omitempty"`
	Error      string `json:"error,omitempty"`
}
