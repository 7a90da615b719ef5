package model

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/harunnryd/tsuyaku/internal/config"
	tsErrors "github.com/harunnryd/tsuyaku/internal/errors"
	"github.com/harunnryd/tsuyaku/internal/logger"
	"github.com/harunnryd/tsuyaku/internal/model/contract"
	"github.com/harunnryd/tsuyaku/internal/model/providers/gemini/rest"
	"github.com/harunnryd/tsuyaku/internal/model/providers/gemini/sdk"
)

// ProviderFactory builds the provider for one variant.
type ProviderFactory func(ctx context.Context, variant string, cfg config.ProviderConfig) (Provider, error)

// DefaultModelRouter resolves "<variant>:<model>" identifiers to a provider.
// Providers are created on first use and cached per variant.
type DefaultModelRouter struct {
	cfg       config.ProviderConfig
	factory   ProviderFactory
	providers map[string]Provider
	mu        sync.RWMutex
}

// NewModelRouter creates the router and eagerly builds the default variant so
// configuration errors surface at construction.
func NewModelRouter(ctx context.Context, cfg config.ProviderConfig) (*DefaultModelRouter, error) {
	return NewModelRouterWithFactory(ctx, cfg, NewProvider)
}

func NewModelRouterWithFactory(ctx context.Context, cfg config.ProviderConfig, factory ProviderFactory) (*DefaultModelRouter, error) {
	if cfg.Variant == "" {
		cfg.Variant = config.DefaultProviderVariant
	}
	router := &DefaultModelRouter{
		cfg:       cfg,
		factory:   factory,
		providers: make(map[string]Provider),
	}

	if _, err := router.provider(ctx, cfg.Variant); err != nil {
		return nil, err
	}

	return router, nil
}

// Route routes a completion request to the appropriate provider
func (r *DefaultModelRouter) Route(ctx context.Context, model string, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	traceID := logger.GetTraceID(ctx)

	variant, modelName, err := r.Resolve(model)
	if err != nil {
		return nil, err
	}

	slog.Info("Routing completion request", "variant", variant, "model", modelName, "trace_id", traceID)

	provider, err := r.provider(ctx, variant)
	if err != nil {
		return nil, err
	}

	req.Model = modelName
	resp, err := provider.Generate(ctx, req)
	if err != nil {
		slog.Error("Provider request failed", "variant", variant, "model", modelName,
			"category", tsErrors.NewDefaultErrorMapper().Category(err), "error", err, "trace_id", traceID)
		return nil, err
	}

	slog.Info("Request completed", "variant", variant, "model", modelName, "finish_reason", resp.FinishReason, "trace_id", traceID)
	return resp, nil
}

func (r *DefaultModelRouter) Transcribe(ctx context.Context, model string, req contract.TranscriptionRequest) (*contract.Transcription, error) {
	variant, modelName, err := r.Resolve(model)
	if err != nil {
		return nil, err
	}

	provider, err := r.provider(ctx, variant)
	if err != nil {
		return nil, err
	}

	req.Model = modelName
	return provider.Transcribe(ctx, req)
}

// Resolve splits an identifier into variant and model. A bare model uses the
// configured variant; an empty identifier uses the configured model too.
func (r *DefaultModelRouter) Resolve(model string) (string, string, error) {
	model = strings.TrimSpace(model)
	variant := r.cfg.Variant

	if prefix, rest, ok := strings.Cut(model, ":"); ok {
		if !isKnownVariant(prefix) {
			return "", "", tsErrors.NotFound(fmt.Sprintf("unknown provider variant %q", prefix))
		}
		variant = prefix
		model = strings.TrimSpace(rest)
	}

	if model == "" {
		model = r.cfg.Model
	}
	if model == "" {
		return "", "", tsErrors.InvalidInput("model is required")
	}
	return variant, model, nil
}

// ListVariants returns the variants that can be routed to.
func (r *DefaultModelRouter) ListVariants() []string {
	return []string{config.VariantREST, config.VariantSDK}
}

// Health checks every provider created so far.
func (r *DefaultModelRouter) Health(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, provider := range r.providers {
		if err := provider.Health(ctx); err != nil {
			slog.Warn("Provider unhealthy", "provider", name, "error", err)
			return tsErrors.Wrap(err, fmt.Sprintf("provider %s unhealthy", name))
		}
	}

	return nil
}

// Close releases resources held by providers that own any.
func (r *DefaultModelRouter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for name, provider := range r.providers {
		if closer, ok := provider.(io.Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = tsErrors.Wrap(err, fmt.Sprintf("close provider %s", name))
			}
		}
	}
	r.providers = make(map[string]Provider)
	return firstErr
}

func (r *DefaultModelRouter) provider(ctx context.Context, variant string) (Provider, error) {
	r.mu.RLock()
	provider, exists := r.providers[variant]
	r.mu.RUnlock()
	if exists {
		return provider, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if provider, exists := r.providers[variant]; exists {
		return provider, nil
	}

	provider, err := r.factory(ctx, variant, r.cfg)
	if err != nil {
		slog.Warn("Failed to create provider", "variant", variant, "error", err)
		return nil, err
	}
	r.providers[variant] = provider
	slog.Debug("Provider initialized", "name", provider.Name(), "type", provider.Type())
	return provider, nil
}

// NewProvider builds the provider for variant from configuration.
func NewProvider(ctx context.Context, variant string, cfg config.ProviderConfig) (Provider, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, tsErrors.Configuration(fmt.Sprintf("invalid provider.request_timeout: %v", err))
	}

	switch variant {
	case config.VariantREST:
		p, err := rest.New(cfg.APIKey, rest.RuntimeConfig{
			BaseURL:        cfg.BaseURL,
			RequestTimeout: timeout,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.VariantSDK:
		p, err := sdk.New(ctx, cfg.APIKey, sdk.RuntimeConfig{
			BaseURL:        cfg.BaseURL,
			RequestTimeout: timeout,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, tsErrors.Configuration(fmt.Sprintf("unknown provider variant: %s", variant))
	}
}

func isKnownVariant(v string) bool {
	return v == config.VariantREST || v == config.VariantSDK
}
