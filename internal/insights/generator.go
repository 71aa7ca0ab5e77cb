package insights

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

var ErrOffline = errors.New("no collaborator credential configured")

// Prompt is one request to the model. Image is optional.
type Prompt struct {
	Text     string
	Image    []byte
	MIMEType string
	JSON     bool // ask for an application/json response
}

// Generator sends a prompt to a text-generation model.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// Factory builds a Generator for an API key.
type Factory func(ctx context.Context, apiKey string) (Generator, error)

// GenAIFactory returns a Factory for the Gemini API.
func GenAIFactory(model string) Factory {
	if model == "" {
		model = DefaultModel
	}
	return func(ctx context.Context, apiKey string) (Generator, error) {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create GenAI client: %w", err)
		}
		return &genaiGenerator{client: client, model: model}, nil
	}
}

type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g *genaiGenerator) Generate(ctx context.Context, p Prompt) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(p.Text)}
	if len(p.Image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(p.Image, p.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	var cfg *genai.GenerateContentConfig
	if p.JSON {
		cfg = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content with %s: %w", g.model, err)
	}
	return resp.Text(), nil
}
