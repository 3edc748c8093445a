package analysis

import "fmt"

// Depth is the analysis-depth preset selected by the caller.
type Depth string

const (
	DepthBasic    Depth = "basic"
	DepthStandard Depth = "standard"
	DepthAdvanced Depth = "advanced"
	DepthCustom   Depth = "custom"
)

// Config is the immutable per-request analysis configuration. Flags are
// derived from the depth preset unless the preset is custom.
type Config struct {
	DetectAspects     bool
	DetectEmotions    bool
	DetectIntent      bool
	ExtractKeyPhrases bool
	TargetLanguage    string
	TranslateContent  bool
}

// CustomFlags carries caller-supplied flags for the custom preset.
type CustomFlags struct {
	DetectAspects     bool `json:"detect_aspects"`
	DetectEmotions    bool `json:"detect_emotions"`
	DetectIntent      bool `json:"detect_intent"`
	ExtractKeyPhrases bool `json:"extract_key_phrases"`
}

// ConfigForDepth builds a Config from a preset. An empty depth means
// standard. Custom requires caller flags.
func ConfigForDepth(depth Depth, custom *CustomFlags) (Config, error) {
	switch depth {
	case DepthBasic:
		return Config{}, nil
	case DepthStandard, "":
		return Config{
			DetectAspects:  true,
			DetectEmotions: true,
		}, nil
	case DepthAdvanced:
		return Config{
			DetectAspects:     true,
			DetectEmotions:    true,
			DetectIntent:      true,
			ExtractKeyPhrases: true,
		}, nil
	case DepthCustom:
		if custom == nil {
			return Config{}, fmt.Errorf("%w: custom depth requires custom flags", ErrInvalidDepth)
		}
		return Config{
			DetectAspects:     custom.DetectAspects,
			DetectEmotions:    custom.DetectEmotions,
			DetectIntent:      custom.DetectIntent,
			ExtractKeyPhrases: custom.ExtractKeyPhrases,
		}, nil
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidDepth, depth)
	}
}
