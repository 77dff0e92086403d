package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"vibegrapher/internal/llm/client"
	"vibegrapher/internal/models"
)

// Generator produces either a plain answer or a proposed patch from a
// prompt and the session's prior context.
type Generator struct {
	invoker Invoker
}

func NewGenerator(invoker Invoker) *Generator {
	return &Generator{invoker: invoker}
}

type rawGeneratorOutput struct {
	Type        string `json:"type"`
	Content     string `json:"content"`
	Patch       string `json:"patch"`
	Description string `json:"description"`
}

// Generate runs one generator attempt. history is the durable transcript;
// prompt is the user request or a retry prompt.
func (g *Generator) Generate(ctx context.Context, history []models.ConversationMessage, prompt string) (*GeneratorResult, error) {
	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, schema.SystemMessage(generatorSystemPrompt))
	messages = append(messages, HistoryToMessages(history)...)
	messages = append(messages, schema.UserMessage(prompt))

	reply, err := g.invoker.Invoke(ctx, messages)
	if err != nil {
		return nil, err
	}

	result, err := parseGeneratorOutput(reply.Content)
	if err != nil {
		return nil, err
	}
	result.TokenUsage = client.TokenUsage(reply)
	return result, nil
}

func parseGeneratorOutput(content string) (*GeneratorResult, error) {
	var raw rawGeneratorOutput
	if err := json.Unmarshal([]byte(stripFences(content)), &raw); err != nil {
		// Models occasionally answer in prose despite the format
		// instruction; treat that as a plain response rather than failing
		// the run.
		return &GeneratorResult{Plain: &PlainResponse{Content: content}}, nil
	}

	switch raw.Type {
	case "patch":
		if strings.TrimSpace(raw.Patch) == "" {
			return nil, fmt.Errorf("generator returned a patch response with an empty patch")
		}
		return &GeneratorResult{Patch: &ProposedPatch{Patch: raw.Patch, Description: raw.Description}}, nil
	case "text":
		return &GeneratorResult{Plain: &PlainResponse{Content: raw.Content}}, nil
	default:
		return nil, fmt.Errorf("generator returned unknown response type %q", raw.Type)
	}
}

// HistoryToMessages converts stored turns into model messages. Generator
// turns become assistant messages; reviewer turns are replayed as user
// messages prefixed with their origin so the generator keeps full memory
// of prior feedback.
func HistoryToMessages(history []models.ConversationMessage) []*schema.Message {
	out := make([]*schema.Message, 0, len(history))
	for _, turn := range history {
		switch turn.Role {
		case models.RoleUser:
			out = append(out, schema.UserMessage(turn.Content))
		case models.RoleGenerator:
			out = append(out, schema.AssistantMessage(turn.Content, nil))
		case models.RoleReviewer:
			out = append(out, schema.UserMessage("Reviewer feedback: "+turn.Content))
		}
	}
	return out
}

func stripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
