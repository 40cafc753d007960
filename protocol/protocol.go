// Package protocol generates the optional clinical-protocol narration
// for a mission through an OpenAI-compatible chat-completion API
// (Groq-hosted Llama in production). Never load-bearing: a failure here
// is skipped, not fatal.
package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"go-medalert/types"
)

const defaultModel = "llama-3.3-70b-versatile"

// CareProtocol is the structured output the field team receives.
type CareProtocol struct {
	SuspectedDiagnosis   string   `json:"suspected_diagnosis"`
	TransportProtocol    string   `json:"transport_protocol"`
	ArrivalChecklist     []string `json:"arrival_checklist"`
	MedicationsToPrepare []string `json:"medications_to_prepare"`
}

// Generator wraps the chat-completion client.
type Generator struct {
	client *openai.Client
	model  string
}

// NewClient builds an OpenAI-compatible client. baseURL overrides the
// endpoint for Groq or another compatible host.
func NewClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// NewGenerator wires a generator; model falls back to the default.
func NewGenerator(client *openai.Client, model string) *Generator {
	if model == "" {
		model = defaultModel
	}
	return &Generator{client: client, model: model}
}

// Generate asks the model for standard operating procedures matching
// the patient's presentation.
func (g *Generator) Generate(ctx context.Context, age int, symptoms string, severity types.Severity) (*CareProtocol, error) {
	prompt := fmt.Sprintf(`You are the clinical protocols engine of an emergency dispatch system. Generate a checklist and standardized care protocol (SOP) for the field team.

PATIENT DATA:
- Age: %d
- Symptoms: %s
- Severity level: %d of 5

Produce STRICT JSON (no surrounding text) with exactly this structure:
{
    "suspected_diagnosis": "primary medical hypothesis (e.g. Acute Coronary Syndrome)",
    "transport_protocol": "immediate technical actions in the ambulance, one short precise sentence",
    "arrival_checklist": ["action 1 for the hospital", "action 2", "action 3"],
    "medications_to_prepare": ["medication 1", "medication 2"]
}`, age, symptoms, severity)

	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are a medical specialist producing concise standardized care protocols as strict JSON.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   400,
			N:           1,
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("chat completion error: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("model returned empty response or choices")
	}

	return ParseCareProtocol(resp.Choices[0].Message.Content)
}

// ParseCareProtocol decodes the model output, stripping the markdown
// fences models wrap JSON in despite instructions.
func ParseCareProtocol(content string) (*CareProtocol, error) {
	cleaned := strings.TrimSpace(content)
	if idx := strings.Index(cleaned, "```json"); idx != -1 {
		cleaned = cleaned[idx+len("```json"):]
		if end := strings.Index(cleaned, "```"); end != -1 {
			cleaned = cleaned[:end]
		}
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.Trim(cleaned, "`")
	}
	cleaned = strings.TrimSpace(cleaned)

	var protocol CareProtocol
	if err := json.Unmarshal([]byte(cleaned), &protocol); err != nil {
		return nil, fmt.Errorf("parsing protocol JSON: %w", err)
	}
	return &protocol, nil
}
