// Package rest talks to the Gemini generateContent endpoint over plain HTTP,
// using the hand-written wire types from the parent package.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	tsErrors "github.com/harunnryd/tsuyaku/internal/errors"
	"github.com/harunnryd/tsuyaku/internal/logger"
	"github.com/harunnryd/tsuyaku/internal/model/contract"
	"github.com/harunnryd/tsuyaku/internal/model/providers/gemini"
)

const (
	Name = "google-rest"

	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultTimeout = 60 * time.Second

	// maxErrorBody caps how much of a failed response is read into the error.
	maxErrorBody = 64 << 10
)

// Converter is the REST variant of the converter pair: requests become the
// JSON wire struct, responses arrive as raw bytes.
type Converter struct{}

var _ contract.Converter[*gemini.Request, []byte] = Converter{}

func (Converter) ConvertRequest(req contract.CompletionRequest) (*gemini.Request, error) {
	return gemini.BuildRequest(req)
}

func (Converter) ConvertResponse(raw []byte) (*contract.CompletionResponse, error) {
	return gemini.DecodeResponse(raw)
}

type RuntimeConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	// HTTPClient overrides the default client. RequestTimeout is ignored
	// when it is set.
	HTTPClient *http.Client
}

type Provider struct {
	apiKey    string
	baseURL   string
	client    *http.Client
	converter Converter
	mapper    tsErrors.ErrorMapper
}

func New(apiKey string, cfg RuntimeConfig) (*Provider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, tsErrors.Configuration("google api key is required (set GOOGLE_API_KEY or provider.api_key)")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.RequestTimeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Provider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
		mapper:  tsErrors.NewDefaultErrorMapper(),
	}, nil
}

func (p *Provider) Name() string {
	return Name
}

func (p *Provider) Type() string {
	return "gemini"
}

func (p *Provider) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	traceID := logger.GetTraceID(ctx)

	model := normalizeModel(req.Model)
	if model == "" {
		return nil, tsErrors.InvalidInput("model is required")
	}

	body, err := p.converter.ConvertRequest(req)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, tsErrors.WrapWithCategory(err, "encode gemini request", tsErrors.ErrInternal)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		p.baseURL, url.PathEscape(model), url.QueryEscape(p.apiKey))

	slog.Debug("Calling Gemini generateContent", "provider", Name, "model", model,
		"messages", len(req.Messages), "tools", len(req.Tools), "trace_id", traceID)

	raw, err := p.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		slog.Error("Gemini request failed", "provider", Name, "model", model, "error", err, "trace_id", traceID)
		return nil, err
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
	return nil, tsErrors.Unsupported("audio transcription is not supported by the Google Gemini REST provider")
}

// Health lists models, which only needs a valid key.
func (p *Provider) Health(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/v1beta/models?key=%s", p.baseURL, url.QueryEscape(p.apiKey))
	_, err := p.do(ctx, http.MethodGet, endpoint, nil)
	return err
}

// Close releases idle keep-alive connections held by the client.
func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func (p *Provider) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, tsErrors.WrapWithCategory(err, "build gemini request", tsErrors.ErrInternal)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, tsErrors.WrapWithCategory(redactKey(err, p.apiKey), "failed to call Google Gemini REST API", tsErrors.ErrTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, p.mapper.MapStatus(resp.StatusCode, readErrorMessage(resp.Body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, tsErrors.WrapWithCategory(err, "read gemini response", tsErrors.ErrTransport)
	}
	return raw, nil
}

func readErrorMessage(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	var errResp gemini.ErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return fmt.Sprintf("%s (status: %s)", errResp.Error.Message, errResp.Error.Status)
	}
	return strings.TrimSpace(string(data))
}

// normalizeModel accepts both "gemini-x" and "models/gemini-x".
func normalizeModel(model string) string {
	return strings.TrimPrefix(strings.TrimSpace(model), "models/")
}

// redactKey strips the API key from errors that echo the request URL.
func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), url.QueryEscape(key)) && !strings.Contains(err.Error(), key) {
		return err
	}
	msg := strings.ReplaceAll(err.Error(), url.QueryEscape(key), "REDACTED")
	msg = strings.ReplaceAll(msg, key, "REDACTED")
	return &redactedError{msg: msg, cause: err}
}

type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.cause }
