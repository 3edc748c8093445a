package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/feedbacklens/backend/pkg/logger"
	"github.com/feedbacklens/backend/pkg/utils"
)

var (
	ErrNotConfigured = errors.New("translation oracle is not configured")
	ErrEmptyInput    = errors.New("translation input text is empty")
	ErrUpstreamEmpty = errors.New("translation oracle returned no usable text")
)

// fallbackLanguage is returned whenever detection cannot produce a clean
// two-letter code. Detection never fails outright.
const fallbackLanguage = "en"

type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Cache stores translation and detection replies keyed by content hash.
// A nil Cache disables caching.
type Cache interface {
	GetText(ctx context.Context, key string) (string, bool, error)
	SetText(ctx context.Context, key, value string, ttl time.Duration) error
}

type Gateway struct {
	api      completionAPI
	model    string
	timeout  time.Duration
	cache    Cache
	cacheTTL time.Duration
}

// NewGateway builds a translation gateway. An empty apiKey yields an
// unconfigured gateway: Translate fails with ErrNotConfigured and
// DetectLanguage falls back, but construction never errors because
// translation is an optional capability.
func NewGateway(apiKey, model string, timeoutSec int, cache Cache, cacheTTL time.Duration) *Gateway {
	g := &Gateway{
		model:    model,
		timeout:  time.Duration(timeoutSec) * time.Second,
		cache:    cache,
		cacheTTL: cacheTTL,
	}

	if apiKey == "" {
		logger.Warn("Translation oracle not configured, translation disabled")
		return g
	}

	config := openai.DefaultConfig(apiKey)
	config.HTTPClient = &http.Client{
		Timeout: time.Duration(timeoutSec) * time.Second,
	}
	g.api = openai.NewClientWithConfig(config)

	logger.Info("Translation gateway initialized", zap.String("model", model))
	return g
}

func (g *Gateway) IsConfigured() bool {
	return g.api != nil
}

// Translate translates text into target. Source may be an ISO 639-1 code or
// "auto". The oracle's raw reply is normalized: a single pair of wrapping
// quotes and any leading "translation:" style label are stripped.
func (g *Gateway) Translate(ctx context.Context, text, source, target string) (string, error) {
	if !g.IsConfigured() {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}

	cacheKey := "translate:" + utils.HashString(text+"|"+source+"|"+target)
	if g.cache != nil {
		if cached, ok, err := g.cache.GetText(ctx, cacheKey); err == nil && ok {
			return cached, nil
		}
	}

	from := "the source language (detect it)"
	if source != "" && source != "auto" {
		from = fmt.Sprintf("language %q", source)
	}

	prompt := fmt.Sprintf(
		"Translate the following text from %s to language %q. Reply with only the translated text, nothing else.\n\n%s",
		from, target, text,
	)

	reply, err := g.complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to call translation oracle: %w", err)
	}

	translated := normalizeReply(reply)
	if translated == "" {
		return "", ErrUpstreamEmpty
	}

	if g.cache != nil {
		if err := g.cache.SetText(ctx, cacheKey, translated, g.cacheTTL); err != nil {
			logger.Warn("Failed to cache translation", zap.Error(err))
		}
	}

	logger.Debug("Text translated",
		zap.String("source", source),
		zap.String("target", target),
		zap.Int("length", len(translated)),
	)

	return translated, nil
}

// DetectLanguage returns the ISO 639-1 code of text. It never returns an
// error: any failure, or a reply that is not exactly two letters after
// stripping non-letters, falls back to "en".
func (g *Gateway) DetectLanguage(ctx context.Context, text string) string {
	if !g.IsConfigured() || strings.TrimSpace(text) == "" {
		return fallbackLanguage
	}

	cacheKey := "detect:" + utils.HashString(text)
	if g.cache != nil {
		if cached, ok, err := g.cache.GetText(ctx, cacheKey); err == nil && ok {
			return cached
		}
	}

	prompt := fmt.Sprintf(
		"Reply with only the two-letter ISO 639-1 code of the language this text is written in.\n\n%s",
		text,
	)

	reply, err := g.complete(ctx, prompt)
	if err != nil {
		logger.Warn("Language detection failed, using fallback", zap.Error(err))
		return fallbackLanguage
	}

	code := cleanLanguageCode(reply)
	if code == "" {
		return fallbackLanguage
	}

	if g.cache != nil {
		if err := g.cache.SetText(ctx, cacheKey, code, g.cacheTTL); err != nil {
			logger.Warn("Failed to cache detected language", zap.Error(err))
		}
	}

	return code
}

func (g *Gateway) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrUpstreamEmpty
	}

	return resp.Choices[0].Message.Content, nil
}

var replyLabels = []string{"translation:", "translated text:", "result:"}

// normalizeReply strips chatter the oracle wraps around the translation:
// a leading label and one pair of wrapping quotation marks.
func normalizeReply(reply string) string {
	out := strings.TrimSpace(reply)

	lower := strings.ToLower(out)
	for _, label := range replyLabels {
		if strings.HasPrefix(lower, label) {
			out = strings.TrimSpace(out[len(label):])
			break
		}
	}

	if len(out) >= 2 {
		first, last := out[0], out[len(out)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			out = out[1 : len(out)-1]
		}
	}

	return strings.TrimSpace(out)
}

// cleanLanguageCode reduces a detection reply to a two-letter code, or "".
func cleanLanguageCode(reply string) string {
	var letters []rune
	for _, r := range reply {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToLower(r))
		}
	}
	if len(letters) != 2 {
		return ""
	}
	return string(letters)
}
