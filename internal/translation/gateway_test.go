package translation

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type fakeCompletionAPI struct {
	calls   int
	lastReq openai.ChatCompletionRequest
	reply   string
	err     error
}

func (f *fakeCompletionAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.reply}},
		},
	}, nil
}

type memoryCache struct {
	entries map[string]string
}

func (c *memoryCache) GetText(ctx context.Context, key string) (string, bool, error) {
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memoryCache) SetText(ctx context.Context, key, value string, ttl time.Duration) error {
	if c.entries == nil {
		c.entries = map[string]string{}
	}
	c.entries[key] = value
	return nil
}

func newTestGateway(api completionAPI, cache Cache) *Gateway {
	return &Gateway{
		api:      api,
		model:    "test-model",
		timeout:  time.Second,
		cache:    cache,
		cacheTTL: time.Minute,
	}
}

func TestNewGatewayWithoutKeyIsUnconfigured(t *testing.T) {
	g := NewGateway("", "model", 30, nil, time.Minute)
	if g.IsConfigured() {
		t.Fatal("gateway with empty key reports configured")
	}

	if _, err := g.Translate(context.Background(), "hello", "en", "fr"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("error = %v, want ErrNotConfigured", err)
	}
	if lang := g.DetectLanguage(context.Background(), "bonjour"); lang != "en" {
		t.Fatalf("DetectLanguage = %q, want fallback en", lang)
	}
}

func TestTranslateRejectsEmptyInput(t *testing.T) {
	g := newTestGateway(&fakeCompletionAPI{reply: "x"}, nil)

	if _, err := g.Translate(context.Background(), "  \n ", "en", "fr"); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("error = %v, want ErrEmptyInput", err)
	}
}

func TestTranslateNormalizesReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"plain", "Bonjour", "Bonjour"},
		{"quoted", `"Bonjour"`, "Bonjour"},
		{"single quoted", "'Bonjour'", "Bonjour"},
		{"labeled", "Translation: Bonjour", "Bonjour"},
		{"labeled and quoted", `Translation: "Bonjour"`, "Bonjour"},
		{"translated text label", "Translated text: Bonjour", "Bonjour"},
		{"result label", "Result: Bonjour", "Bonjour"},
		{"surrounding whitespace", "  Bonjour \n", "Bonjour"},
		{"internal quotes kept", `He said "no" to me`, `He said "no" to me`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGateway(&fakeCompletionAPI{reply: tt.reply}, nil)
			got, err := g.Translate(context.Background(), "Hello", "en", "fr")
			if err != nil {
				t.Fatalf("Translate() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("Translate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranslateEmptyReply(t *testing.T) {
	g := newTestGateway(&fakeCompletionAPI{reply: `""`}, nil)

	if _, err := g.Translate(context.Background(), "Hello", "en", "fr"); !errors.Is(err, ErrUpstreamEmpty) {
		t.Fatalf("error = %v, want ErrUpstreamEmpty", err)
	}
}

func TestTranslateUsesCache(t *testing.T) {
	api := &fakeCompletionAPI{reply: "Bonjour"}
	cache := &memoryCache{}
	g := newTestGateway(api, cache)

	first, err := g.Translate(context.Background(), "Hello", "en", "fr")
	if err != nil {
		t.Fatalf("first Translate() error = %v", err)
	}

	second, err := g.Translate(context.Background(), "Hello", "en", "fr")
	if err != nil {
		t.Fatalf("second Translate() error = %v", err)
	}

	if first != second {
		t.Fatalf("cached reply %q differs from original %q", second, first)
	}
	if api.calls != 1 {
		t.Fatalf("oracle called %d times, want 1 (second call cached)", api.calls)
	}
}

func TestTranslateCacheKeyIncludesLanguages(t *testing.T) {
	api := &fakeCompletionAPI{reply: "Bonjour"}
	g := newTestGateway(api, &memoryCache{})

	if _, err := g.Translate(context.Background(), "Hello", "en", "fr"); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if _, err := g.Translate(context.Background(), "Hello", "en", "de"); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}

	if api.calls != 2 {
		t.Fatalf("oracle called %d times, want 2 (different targets must not share cache entries)", api.calls)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"clean code", "fr", "fr"},
		{"upper case", "FR", "fr"},
		{"quoted", `"fr"`, "fr"},
		{"with period", "fr.", "fr"},
		{"chatty reply falls back", "The language is French (fr)", "en"},
		{"three letters falls back", "fra", "en"},
		{"empty falls back", "", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGateway(&fakeCompletionAPI{reply: tt.reply}, nil)
			if got := g.DetectLanguage(context.Background(), "Bonjour tout le monde"); got != tt.want {
				t.Fatalf("DetectLanguage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectLanguageNeverErrors(t *testing.T) {
	g := newTestGateway(&fakeCompletionAPI{err: errors.New("oracle down")}, nil)

	if got := g.DetectLanguage(context.Background(), "Bonjour"); got != "en" {
		t.Fatalf("DetectLanguage() = %q, want fallback en", got)
	}
}

func TestLanguageName(t *testing.T) {
	if name := LanguageName("fr"); name != "French" {
		t.Fatalf("LanguageName(fr) = %q", name)
	}
	if name := LanguageName("zz"); name != "zz" {
		t.Fatalf("LanguageName(zz) = %q, want code passthrough", name)
	}
}
