package openai

import (
	"context"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/vozlegal/intake/internal/errors"
	"github.com/vozlegal/intake/internal/model/contract"
)

const defaultEmbeddingModel = openai.SmallEmbedding3

type Provider struct {
	client         *openai.Client
	model          string
	embeddingModel openai.EmbeddingModel
}

// New builds an OpenAI-backed provider. The chat model and the embedding
// model are separate: the embeddings endpoint rejects chat model names,
// so an empty embeddingModel falls back to a dedicated default.
func New(apiKey, baseURL, model, embeddingModel string) *Provider {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	embedding := defaultEmbeddingModel
	if embeddingModel != "" {
		embedding = openai.EmbeddingModel(embeddingModel)
	}

	return &Provider{
		client:         openai.NewClientWithConfig(cfg),
		model:          model,
		embeddingModel: embedding,
	}
}

func (p *Provider) Name() string {
	return "openai"
}

func (p *Provider) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:     req.Model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, errors.Wrap(errors.MapExternal(err), "openai request failed")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.ExternalService("openai returned no choices")
	}

	return &contract.CompletionResponse{Content: resp.Choices[0].Message.Content}, nil
}

func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, p.embeddingRequest(text))
	if err != nil {
		return nil, errors.Wrap(errors.MapExternal(err), "openai embedding failed")
	}
	if len(resp.Data) == 0 {
		return nil, errors.ExternalService("openai returned no embedding data")
	}

	return resp.Data[0].Embedding, nil
}

func (p *Provider) embeddingRequest(text string) openai.EmbeddingRequest {
	return openai.EmbeddingRequest{
		Input: []string{text},
		Model: p.embeddingModel,
	}
}

func (p *Provider) Health(ctx context.Context) error {
	return nil
}
