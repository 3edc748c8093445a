package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/feedbacklens/backend/pkg/circuitbreaker"
	"github.com/feedbacklens/backend/pkg/logger"
)

var (
	ErrNotConfigured     = errors.New("analysis oracle is not configured")
	ErrEmptyInput        = errors.New("analysis input text is empty")
	ErrUpstreamBlocked   = errors.New("analysis oracle declined to answer")
	ErrUpstreamEmpty     = errors.New("analysis oracle returned no content")
	ErrMalformedResponse = errors.New("analysis oracle returned no parsable JSON object")
)

// RawResult is the unvalidated JSON tree returned by the oracle. It must not
// travel past the validator boundary.
type RawResult map[string]interface{}

// RequestFlags mirrors the caller's analysis configuration so the prompt only
// asks for the sections the caller wants.
type RequestFlags struct {
	DetectAspects     bool
	DetectEmotions    bool
	DetectIntent      bool
	ExtractKeyPhrases bool
}

type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client calls the text-analysis oracle with a strict JSON response contract.
type Client struct {
	api         completionAPI
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
}

func NewClient(apiKey, model string, temperature float32, maxTokens, timeoutSec int) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	config := openai.DefaultConfig(apiKey)
	config.HTTPClient = &http.Client{
		Timeout: time.Duration(timeoutSec) * time.Second,
	}

	cb := circuitbreaker.NewCircuitBreaker("analysis-oracle", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.Log,
	})

	logger.Info("Analysis oracle client initialized",
		zap.String("model", model),
		zap.Int("timeout_sec", timeoutSec),
	)

	return &Client{
		api:         openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     time.Duration(timeoutSec) * time.Second,
		cb:          cb,
	}, nil
}

// Model reports the model identity used for provenance metadata.
func (c *Client) Model() string {
	return c.model
}

// Analyze sends the feedback text to the oracle and returns the raw JSON tree
// located in its reply. Language is the ISO 639-1 code of text as analyzed.
func (c *Client) Analyze(ctx context.Context, text, language string, flags RequestFlags) (RawResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: analysisSystemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: buildAnalysisPrompt(text, language, flags),
		},
	}

	var resp openai.ChatCompletionResponse

	err := c.cb.Execute(ctx, func() error {
		var apiErr error
		resp, apiErr = c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: c.temperature,
			MaxTokens:   c.maxTokens,
		})
		return apiErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call analysis oracle: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrUpstreamEmpty
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return nil, ErrUpstreamBlocked
	}

	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return nil, ErrUpstreamEmpty
	}

	result, err := ExtractJSON(content)
	if err != nil {
		logger.Warn("Oracle reply contained no parsable JSON",
			zap.String("model", c.model),
			zap.Int("reply_length", len(content)),
		)
		return nil, err
	}

	logger.Debug("Analysis oracle replied",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return result, nil
}
