package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-2.0-flash"

// historyWindow bounds how many prior turns are injected into the prompt.
const historyWindow = 10

// GeminiProvider implements Responder using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider initializes a new Gemini client.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: missing api key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(geminiModel)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.3)

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

func (p *GeminiProvider) Close() {
	p.client.Close()
}

// Respond asks Gemini for a short reply and, when the message is a service
// request, the category it belongs to.
func (p *GeminiProvider) Respond(ctx context.Context, message string, history []Turn, categories []string) (*FallbackResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("gemini: empty message")
	}
	prompt := fmt.Sprintf("%s\n\nUser Message: %s", buildSystemPrompt(history, categories), message)

	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}

	var raw strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			raw.WriteString(string(txt))
		}
	}
	return parseFallback(raw.String(), categories)
}

// fallbackSchema is the shape the prompt asks the model to answer in.
var fallbackSchema = mustSchema(`{
	"type": "object",
	"required": ["reply"],
	"properties": {
		"reply": {"type": "string", "pattern": "\\S", "maxLength": 1200},
		"category": {"type": "string"}
	}
}`)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("ai: bad schema: %v", err))
	}
	return schema
}

// parseFallback validates the model output against fallbackSchema, decodes it
// and drops any category that is not in the known list.
func parseFallback(raw string, categories []string) (*FallbackResult, error) {
	clean := cleanJSONString(raw)
	check, err := fallbackSchema.Validate(gojsonschema.NewStringLoader(clean))
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, clean)
	}
	if !check.Valid() {
		return nil, fmt.Errorf("gemini: unexpected reply shape: %s", check.Errors()[0])
	}
	var result FallbackResult
	if err := json.Unmarshal([]byte(clean), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, clean)
	}
	result.Reply = strings.TrimSpace(result.Reply)
	if result.Reply == "" {
		return nil, fmt.Errorf("gemini: empty reply")
	}
	result.Category = strings.ToLower(strings.TrimSpace(result.Category))
	if result.Category != "" && !contains(categories, result.Category) {
		result.Category = ""
	}
	return &result, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func buildSystemPrompt(history []Turn, categories []string) string {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	var h strings.Builder
	for _, t := range history {
		fmt.Fprintf(&h, "- %s: %s\n", t.Role, t.Text)
	}
	if h.Len() == 0 {
		h.WriteString("NONE\n")
	}

	return fmt.Sprintf(`Role: You are the assistant for "YourHelpa", a marketplace that connects customers in Nigeria with verified service providers (called Helpas).
Known service categories: %s

Recent conversation:
%s
RULES:
1. Reply in friendly, short Nigerian English (max 3 sentences). Use at most one emoji.
2. If the user is asking for a service, set "category" to EXACTLY one of the known categories. Otherwise leave it empty.
3. Never invent prices, providers, phone numbers or bookings.
4. If the request is unrelated to household services or Nigerian recipes, gently steer back to what YourHelpa can do.
5. DO NOT use markdown in the reply.

Output JSON Schema:
{
  "reply": "string (User facing response)",
  "category": "string or empty"
}
`, strings.Join(categories, ", "), h.String())
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
