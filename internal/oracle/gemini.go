package oracle

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/answer.txt
var answerPrompt string

//go:embed prompts/prophecy.txt
var prophecyPrompt string

var templates = template.Must(template.New("oracle").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`{{define "answer"}}` + answerPrompt + `{{end}}{{define "prophecy"}}` + prophecyPrompt + `{{end}}`))

// ErrEmptyResponse is returned when Gemini answers with nothing usable.
var ErrEmptyResponse = errors.New("oracle: no content returned from Gemini")

// generator is the part of *genai.GenerativeModel the oracle uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini is an Oracle backed by a Gemini model.
type Gemini struct {
	client *genai.Client
	model  generator
}

// NewGemini connects to Gemini with apiKey and uses the named model.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	m := client.GenerativeModel(model)
	m.SetTemperature(1.1)
	m.SetMaxOutputTokens(256)
	return &Gemini{client: client, model: m}, nil
}

// Close releases the client.
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Answer implements Oracle.
func (g *Gemini) Answer(ctx context.Context, q Question) (string, error) {
	return g.generate(ctx, "answer", q)
}

// Prophesy implements Oracle.
func (g *Gemini) Prophesy(ctx context.Context, o Omen) (string, error) {
	return g.generate(ctx, "prophecy", o)
}

func (g *Gemini) generate(ctx context.Context, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", name, err)
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(buf.String()))
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", name, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	return parseReply(string(text))
}

// parseReply pulls the text field out of a YAML reply, tolerating code
// fences around it.
func parseReply(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```yaml")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")

	var reply struct {
		Text string `yaml:"text"`
	}
	if err := yaml.Unmarshal([]byte(clean), &reply); err != nil {
		return "", fmt.Errorf("failed to parse reply YAML: %w", err)
	}
	reply.Text = strings.TrimSpace(reply.Text)
	if reply.Text == "" {
		return "", ErrEmptyResponse
	}
	return reply.Text, nil
}
