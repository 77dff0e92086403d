package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"vibegrapher/internal/llm/client"
	"vibegrapher/internal/models"
)

// Reviewer evaluates validated patches and returns approve/reject with
// reasoning and a commit message suggestion.
type Reviewer struct {
	invoker Invoker
}

func NewReviewer(invoker Invoker) *Reviewer {
	return &Reviewer{invoker: invoker}
}

// Review evaluates a patch that already passed the validation gate.
// history carries only the reviewer's own prior turns for this scope.
func (r *Reviewer) Review(ctx context.Context, history []models.ConversationMessage, userRequest, description, patchText, patchedSource string) (*ReviewResult, error) {
	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, schema.SystemMessage(reviewerSystemPrompt))
	for _, turn := range history {
		if turn.Role == models.RoleReviewer {
			messages = append(messages, schema.AssistantMessage(turn.Content, nil))
		}
	}
	messages = append(messages, schema.UserMessage(ReviewRequestPrompt(userRequest, description, patchText, patchedSource)))

	reply, err := r.invoker.Invoke(ctx, messages)
	if err != nil {
		return nil, err
	}
	return parseReviewOutput(reply)
}

// SuggestCommitMessage re-invokes the reviewer solely for a new commit
// message; the diff itself is untouched.
func (r *Reviewer) SuggestCommitMessage(ctx context.Context, description, patchText string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(reviewerSystemPrompt),
		schema.UserMessage(CommitMessagePrompt(description, patchText)),
	}
	reply, err := r.invoker.Invoke(ctx, messages)
	if err != nil {
		return "", err
	}
	result, err := parseReviewOutput(reply)
	if err != nil {
		return "", err
	}
	if result.CommitMessage == "" {
		return "", fmt.Errorf("reviewer returned an empty commit message")
	}
	return result.CommitMessage, nil
}

func parseReviewOutput(reply *schema.Message) (*ReviewResult, error) {
	var result ReviewResult
	if err := json.Unmarshal([]byte(stripFences(reply.Content)), &result); err != nil {
		return nil, fmt.Errorf("parse reviewer output: %w", err)
	}
	if result.Reasoning == "" {
		return nil, fmt.Errorf("reviewer returned no reasoning")
	}
	result.TokenUsage = client.TokenUsage(reply)
	return &result, nil
}
