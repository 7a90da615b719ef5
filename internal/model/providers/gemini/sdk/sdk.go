package sdk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tsErrors "github.com/harunnryd/tsuyaku/internal/errors"
	"github.com/harunnryd/tsuyaku/internal/logger"
	"github.com/harunnryd/tsuyaku/internal/model/contract"

	"google.golang.org/genai"
)

const Name = "google"

// generator is the slice of *genai.Models the provider needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type RuntimeConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

type Provider struct {
	models    generator
	converter Converter
	mapper    tsErrors.ErrorMapper
}

func New(ctx context.Context, apiKey string, cfg RuntimeConfig) (*Provider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, tsErrors.Configuration("google api key is required (set GOOGLE_API_KEY or provider.api_key)")
	}

	clientCfg := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.HTTPOptions.BaseURL = strings.TrimRight(base, "/") + "/"
	}
	if cfg.RequestTimeout > 0 {
		timeout := cfg.RequestTimeout
		clientCfg.HTTPOptions.Timeout = &timeout
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, tsErrors.WrapWithCategory(err, "create genai client", tsErrors.ErrConfiguration)
	}
	return newWithGenerator(client.Models), nil
}

func newWithGenerator(g generator) *Provider {
	return &Provider{models: g, mapper: tsErrors.NewDefaultErrorMapper()}
}

func (p *Provider) Name() string {
	return Name
}

func (p *Provider) Type() string {
	return "gemini"
}

func (p *Provider) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	traceID := logger.GetTraceID(ctx)

	model := strings.TrimPrefix(strings.TrimSpace(req.Model), "models/")
	if model == "" {
		return nil, tsErrors.InvalidInput("model is required")
	}

	sdkReq, err := p.converter.ConvertRequest(req)
	if err != nil {
		return nil, err
	}

	slog.Debug("Calling Gemini via genai", "provider", Name, "model", model,
		"messages", len(req.Messages), "tools", len(req.Tools), "trace_id", traceID)

	raw, err := p.models.GenerateContent(ctx, model, sdkReq.Contents, sdkReq.Config)
	if err != nil {
		mapped := p.mapError(err)
		slog.Error("Gemini request failed", "provider", Name, "model", model, "error", mapped, "trace_id", traceID)
		return nil, mapped
	}

	resp, err := p.converter.ConvertResponse(raw)
	if err != nil {
		slog.Error("Gemini response could not be converted", "provider", Name, "model", model, "error", err, "trace_id", traceID)
		return nil, err
	}
	if resp.Model == "" {
		resp.Model = model
	}
	return resp, nil
}

func (p *Provider) Transcribe(ctx context.Context, req contract.TranscriptionRequest) (*contract.Transcription, error) {
	return nil, tsErrors.Unsupported("audio transcription is not supported by the Google Gemini provider")
}

// Health is a no-op: the genai client validates nothing until the first call.
func (p *Provider) Health(ctx context.Context) error {
	if p.models == nil {
		return tsErrors.Internal("genai client is not initialized")
	}
	return nil
}

// mapError routes API errors through the status mapper. Context errors keep
// their identity; everything else is a transport failure.
func (p *Provider) mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return p.mapper.MapStatus(apiErr.Code, apiMessage(apiErr))
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return p.mapper.MapStatus(apiErrPtr.Code, apiMessage(*apiErrPtr))
	}
	return tsErrors.WrapWithCategory(err, "failed to call Google Gemini API", tsErrors.ErrTransport)
}

func apiMessage(e genai.APIError) string {
	if e.Status == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (status: %s)", e.Message, e.Status)
}
