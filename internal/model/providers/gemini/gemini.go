package gemini

import (
	"context"
	"os"

	"google.golang.org/genai"

	"github.com/vozlegal/intake/internal/errors"
	"github.com/vozlegal/intake/internal/model/contract"
)

const defaultEmbeddingModel = "text-embedding-004"

type Provider struct {
	client *genai.Client
}

func New(apiKey string) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &Provider{client: client}, nil
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	var contents []*genai.Content
	for _, m := range req.Messages {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []*genai.Part{{Text: m.Content}}})
	}

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.MapExternal(err), "gemini request failed")
	}

	out := &contract.CompletionResponse{}
	if resp == nil {
		return out, nil
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" {
				out.Content += part.Text
			}
		}
	}

	return out, nil
}

func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.Models.EmbedContent(ctx, defaultEmbeddingModel, genai.Text(text), nil)
	if err != nil {
		return nil, errors.Wrap(errors.MapExternal(err), "gemini embedding failed")
	}
	if resp == nil || len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.ExternalService("gemini embedding returned empty result")
	}

	return resp.Embeddings[0].Values, nil
}

func (p *Provider) Health(ctx context.Context) error {
	return nil
}
