package agents

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// Invoker is the capability both roles are built on: send a prompt plus
// prior context, get a reply. The production implementation is
// client.LLMClient; tests inject deterministic stubs.
type Invoker interface {
	Invoke(ctx context.Context, messages []*schema.Message) (*schema.Message, error)
}

// PlainResponse is a generator answer that proposes no change.
type PlainResponse struct {
	Content string `json:"content"`
}

// ProposedPatch is a generator answer carrying a unified diff.
type ProposedPatch struct {
	Patch       string `json:"patch"`
	Description string `json:"description"`
}

// GeneratorResult is a tagged variant: exactly one of Plain or Patch is
// set, so callers branch exhaustively instead of sniffing fields.
type GeneratorResult struct {
	Plain      *PlainResponse `json:"plain,omitempty"`
	Patch      *ProposedPatch `json:"patch,omitempty"`
	TokenUsage int            `json:"token_usage,omitempty"`
}

// ReviewResult is the reviewer's verdict on a validated patch.
type ReviewResult struct {
	Approved      bool   `json:"approved"`
	Reasoning     string `json:"reasoning"`
	CommitMessage string `json:"commit_message"`
	TokenUsage    int    `json:"token_usage,omitempty"`
}
