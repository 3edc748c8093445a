package analysis

import (
	"errors"
	"testing"
)

func TestConfigForDepthPresets(t *testing.T) {
	tests := []struct {
		depth Depth
		want  Config
	}{
		{DepthBasic, Config{}},
		{DepthStandard, Config{DetectAspects: true, DetectEmotions: true}},
		{"", Config{DetectAspects: true, DetectEmotions: true}},
		{DepthAdvanced, Config{DetectAspects: true, DetectEmotions: true, DetectIntent: true, ExtractKeyPhrases: true}},
	}

	for _, tt := range tests {
		got, err := ConfigForDepth(tt.depth, nil)
		if err != nil {
			t.Fatalf("ConfigForDepth(%q) error = %v", tt.depth, err)
		}
		if got != tt.want {
			t.Fatalf("ConfigForDepth(%q) = %+v, want %+v", tt.depth, got, tt.want)
		}
	}
}

func TestConfigForDepthCustom(t *testing.T) {
	got, err := ConfigForDepth(DepthCustom, &CustomFlags{DetectIntent: true})
	if err != nil {
		t.Fatalf("ConfigForDepth(custom) error = %v", err)
	}
	want := Config{DetectIntent: true}
	if got != want {
		t.Fatalf("ConfigForDepth(custom) = %+v, want %+v", got, want)
	}

	if _, err := ConfigForDepth(DepthCustom, nil); !errors.Is(err, ErrInvalidDepth) {
		t.Fatalf("custom without flags: error = %v, want ErrInvalidDepth", err)
	}
}

func TestConfigForDepthRejectsUnknown(t *testing.T) {
	if _, err := ConfigForDepth("exhaustive", nil); !errors.Is(err, ErrInvalidDepth) {
		t.Fatalf("error = %v, want ErrInvalidDepth", err)
	}
}

func TestErrorKindClassification(t *testing.T) {
	if kind := ErrorKind(ErrInvalidDepth); kind != KindValueError {
		t.Fatalf("ErrorKind(ErrInvalidDepth) = %q", kind)
	}
	if kind := ErrorKind(ErrBatchTooLarge); kind != KindValueError {
		t.Fatalf("ErrorKind(ErrBatchTooLarge) = %q", kind)
	}
	if kind := ErrorKind(errors.New("upstream exploded")); kind != KindGeneralError {
		t.Fatalf("ErrorKind(general) = %q", kind)
	}
}
