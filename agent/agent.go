package agent

import (
	"context"
	"fmt"
	"strings"
)

// Builder accumulates agent settings before Build. Mirrors how callers think
// about an agent: a model plus a standing instruction and sampling knobs.
type Builder struct {
	client      *Client
	model       string
	preamble    string
	temperature float64
	maxTokens   int
}

func (b *Builder) Preamble(preamble string) *Builder {
	b.preamble = preamble
	return b
}

func (b *Builder) Temperature(temperature float64) *Builder {
	b.temperature = temperature
	return b
}

func (b *Builder) MaxTokens(maxTokens int) *Builder {
	b.maxTokens = maxTokens
	return b
}

func (b *Builder) Build() *Agent {
	return &Agent{
		client:      b.client,
		model:       b.model,
		preamble:    b.preamble,
		temperature: b.temperature,
		maxTokens:   b.maxTokens,
	}
}

// Agent is an immutable prompt-completion collaborator bound to one model.
type Agent struct {
	client      *Client
	model       string
	preamble    string
	temperature float64
	maxTokens   int
}

func (a *Agent) Model() string {
	return a.model
}

// Prompt sends one user prompt and returns the model's text. This is the
// only blocking call in a workflow stage.
func (a *Agent) Prompt(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
	}

	if a.preamble != "" {
		req.SystemInstruction = &systemInstruction{Parts: []part{{Text: a.preamble}}}
	}

	if a.temperature > 0 || a.maxTokens > 0 {
		req.GenerationConfig = &generationConfig{
			Temperature:     a.temperature,
			MaxOutputTokens: a.maxTokens,
		}
	}

	resp, err := a.client.generate(ctx, a.model, req)
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response from %s", a.model)
	}

	sb := strings.Builder{}
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from %s", a.model)
	}

	return sb.String(), nil
}
