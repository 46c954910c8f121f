package anthropic

import (
	"context"
	"os"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/vozlegal/intake/internal/errors"
	"github.com/vozlegal/intake/internal/model/contract"
)

const defaultMaxTokens = 1024

type Provider struct {
	client anthropic.Client
}

func New(apiKey string) *Provider {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	return &Provider{client: anthropic.NewClient(option.WithAPIKey(apiKey))}
}

func (p *Provider) Name() string {
	return "anthropic"
}

func (p *Provider) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	var messages []anthropic.MessageParam
	for _, m := range req.Messages {
		switch m.Role {
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(maxTokens),
		Messages:  messages,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, errors.Wrap(errors.MapExternal(err), "anthropic request failed")
	}

	resp := &contract.CompletionResponse{}
	for _, block := range msg.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			resp.Content += b.Text
		}
	}

	return resp, nil
}

func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.InvalidInput("embedding not supported by anthropic provider")
}

func (p *Provider) Health(ctx context.Context) error {
	return nil
}
