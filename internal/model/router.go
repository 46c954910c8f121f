package model

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/vozlegal/intake/internal/config"
	intakeErrors "github.com/vozlegal/intake/internal/errors"
	"github.com/vozlegal/intake/internal/logger"
	"github.com/vozlegal/intake/internal/model/contract"
	anthropicProvider "github.com/vozlegal/intake/internal/model/providers/anthropic"
	geminiProvider "github.com/vozlegal/intake/internal/model/providers/gemini"
	openaiProvider "github.com/vozlegal/intake/internal/model/providers/openai"
)

// DefaultModelRouter maps model names to providers and retries the
// configured fallback model when the primary fails. Every registered
// provider sits behind its own circuit breaker.
type DefaultModelRouter struct {
	cfg       config.ModelsConfig
	providers map[string]Provider
	mu        sync.RWMutex
}

func NewModelRouter(cfg config.ModelsConfig) (*DefaultModelRouter, error) {
	router := &DefaultModelRouter{
		cfg:       cfg,
		providers: make(map[string]Provider),
	}

	if err := router.initProviders(); err != nil {
		return nil, err
	}

	return router, nil
}

// Register adds a provider under a model name, wrapped in a circuit
// breaker like config-registered providers.
func (r *DefaultModelRouter) Register(name string, provider Provider) error {
	wrapped, err := r.wrapBreaker(provider)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; exists {
		return intakeErrors.InvalidInput(fmt.Sprintf("model %s already registered", name))
	}
	r.providers[name] = wrapped
	return nil
}

// Route sends a completion request to the provider registered for the
// model, falling back to the configured fallback model on failure.
func (r *DefaultModelRouter) Route(ctx context.Context, model string, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	traceID := logger.GetTraceID(ctx)

	slog.Info("Routing completion request", "model", model, "trace_id", traceID)

	provider, resolvedModel, err := r.resolveProvider(ctx, model)
	if err != nil {
		return nil, err
	}

	return r.executeWithFallback(ctx, resolvedModel, provider, req, traceID)
}

// RouteEmbedding returns an embedding for text, trying the requested
// model first and then any other registered model that supports it.
func (r *DefaultModelRouter) RouteEmbedding(ctx context.Context, model string, text string) ([]float32, error) {
	traceID := logger.GetTraceID(ctx)

	var lastErr error
	for _, tryModel := range r.embeddingTryOrder(model) {
		select {
		case <-ctx.Done():
			return nil, intakeErrors.Wrap(ctx.Err(), "embedding request cancelled")
		default:
		}

		r.mu.RLock()
		provider, exists := r.providers[tryModel]
		r.mu.RUnlock()
		if !exists {
			continue
		}

		embedding, err := provider.Embed(ctx, text)
		if err == nil {
			return embedding, nil
		}

		if isEmbeddingUnsupported(err) {
			continue
		}

		lastErr = err
		slog.Warn("Embedding failed, trying next model", "model", tryModel, "error", err, "trace_id", traceID)
	}

	if lastErr != nil {
		return nil, intakeErrors.WrapWithCategory(lastErr, "embedding failed", intakeErrors.ErrExternalService)
	}

	return nil, intakeErrors.NotFound("no embedding-capable model registered")
}

func (r *DefaultModelRouter) embeddingTryOrder(requestedModel string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(r.providers)+2)
	order := make([]string, 0, len(r.providers)+2)

	appendUnique := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		order = append(order, name)
	}

	appendUnique(requestedModel)
	appendUnique(r.cfg.Fallback)

	registered := make([]string, 0, len(r.providers))
	for name := range r.providers {
		registered = append(registered, name)
	}
	sort.Strings(registered)

	for _, name := range registered {
		appendUnique(name)
	}

	return order
}

func isEmbeddingUnsupported(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "embedding not supported")
}

// ListModels returns all registered model names, sorted.
func (r *DefaultModelRouter) ListModels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	models := make([]string, 0, len(r.providers))
	for name := range r.providers {
		models = append(models, name)
	}
	sort.Strings(models)

	return models
}

// Health reports unhealthy if any registered provider is unhealthy.
func (r *DefaultModelRouter) Health(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, provider := range r.providers {
		if err := provider.Health(ctx); err != nil {
			slog.Warn("Provider unhealthy", "provider", name, "error", err)
			return intakeErrors.Transient(fmt.Sprintf("provider %s unhealthy", name))
		}
	}

	return nil
}

func (r *DefaultModelRouter) initProviders() error {
	for _, entry := range r.cfg.Registry {
		provider, err := r.createProvider(entry)
		if err != nil {
			slog.Warn("Failed to create provider", "provider", entry.Provider, "model", entry.Name, "error", err)
			continue
		}

		wrapped, err := r.wrapBreaker(provider)
		if err != nil {
			return err
		}

		r.providers[entry.Name] = wrapped
		slog.Info("Provider initialized", "name", entry.Name, "type", entry.Provider)
	}

	if len(r.providers) == 0 && len(r.cfg.Registry) > 0 {
		return intakeErrors.Internal("no providers initialized")
	}

	return nil
}

func (r *DefaultModelRouter) wrapBreaker(provider Provider) (Provider, error) {
	timeout, err := config.DurationOrDefault(r.cfg.Breaker.Timeout, config.DefaultBreakerTimeout)
	if err != nil {
		return nil, intakeErrors.InvalidInput(fmt.Sprintf("invalid breaker timeout: %v", err))
	}

	consecutive := r.cfg.Breaker.ConsecutiveFailures
	if consecutive <= 0 {
		consecutive = config.DefaultBreakerConsecutiveFailures
	}

	maxRequests := r.cfg.Breaker.MaxRequests
	if maxRequests <= 0 {
		maxRequests = config.DefaultBreakerMaxRequests
	}

	return newBreakerProvider(provider, maxRequests, timeout, consecutive), nil
}

// resolveProvider finds the provider for a model, substituting the
// fallback model when the requested one is unknown.
func (r *DefaultModelRouter) resolveProvider(ctx context.Context, model string) (Provider, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", intakeErrors.Wrap(ctx.Err(), "provider resolution cancelled")
	default:
	}

	r.mu.RLock()
	provider, exists := r.providers[model]
	r.mu.RUnlock()

	if exists {
		return provider, model, nil
	}

	slog.Warn("Model not found", "model", model)

	if r.cfg.Fallback != "" && model != r.cfg.Fallback {
		r.mu.RLock()
		fallbackProvider, fallbackExists := r.providers[r.cfg.Fallback]
		r.mu.RUnlock()
		if fallbackExists {
			slog.Info("Using fallback model", "model", model, "fallback", r.cfg.Fallback)
			return fallbackProvider, r.cfg.Fallback, nil
		}
	}

	return nil, "", intakeErrors.NotFound(fmt.Sprintf("model %s not found", model))
}

func (r *DefaultModelRouter) executeWithFallback(ctx context.Context, model string, provider Provider, req contract.CompletionRequest, traceID string) (*contract.CompletionResponse, error) {
	maxAttempts := r.cfg.MaxFallbackAttempts
	if maxAttempts < 1 {
		maxAttempts = config.DefaultModelMaxFallbackAttempts
	}

	currentModel := model
	currentProvider := provider

	for attempt := 0; attempt < maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, intakeErrors.Wrap(ctx.Err(), "request execution cancelled")
		default:
		}

		attemptReq := req
		attemptReq.Model = currentModel

		resp, err := currentProvider.Generate(ctx, attemptReq)
		if err == nil {
			slog.Info("Request completed", "model", currentModel, "attempt", attempt+1, "trace_id", traceID)
			return resp, nil
		}

		slog.Error("Provider request failed", "model", currentModel, "attempt", attempt+1, "error", err, "trace_id", traceID)

		if r.cfg.Fallback == "" || currentModel == r.cfg.Fallback {
			return nil, intakeErrors.WrapWithCategory(err, "provider request failed", intakeErrors.ErrExternalService)
		}

		r.mu.RLock()
		fallbackProvider, exists := r.providers[r.cfg.Fallback]
		r.mu.RUnlock()
		if !exists {
			return nil, intakeErrors.NotFound(fmt.Sprintf("fallback model %s not found", r.cfg.Fallback))
		}

		slog.Info("Attempting fallback", "from", currentModel, "to", r.cfg.Fallback)
		currentModel = r.cfg.Fallback
		currentProvider = fallbackProvider
	}

	return nil, intakeErrors.ExternalService("fallback exhausted")
}

func (r *DefaultModelRouter) createProvider(entry config.ModelRegistry) (Provider, error) {
	switch entry.Provider {
	case "openai":
		baseURL := entry.BaseURL
		if baseURL == "" {
			baseURL = config.DefaultOpenAIBaseURL
		}

		if entry.APIKey == "" {
			return nil, intakeErrors.InvalidInput("API key required for OpenAI provider")
		}

		return openaiProvider.New(entry.APIKey, baseURL, entry.Name, entry.EmbeddingModel), nil

	case "anthropic":
		if entry.APIKey == "" {
			return nil, intakeErrors.InvalidInput("API key required for Anthropic provider")
		}

		return anthropicProvider.New(entry.APIKey), nil

	case "gemini":
		if entry.APIKey == "" {
			return nil, intakeErrors.InvalidInput("API key required for Gemini provider")
		}

		provider, err := geminiProvider.New(entry.APIKey)
		if err != nil {
			return nil, intakeErrors.WrapWithCategory(err, "failed to create Gemini provider", intakeErrors.ErrInternal)
		}

		return provider, nil

	default:
		return nil, intakeErrors.InvalidInput(fmt.Sprintf("unknown provider type: %s", entry.Provider))
	}
}
