package config

import "time"

// Default chain policy matches the retry semantics providers expect.
const (
	DefaultMaxRetries = 2
	DefaultBaseDelay  = time.Second
)

// Base URLs for model list shorthand prefixes.
const (
	groqBaseURL = "https://api.groq.com/openai/v1"
)

func DefaultConfig() Config {
	return Config{
		Hotkey: Hotkey{
			Mode: "push_to_talk",
			Key:  "scroll_lock",
		},
		Audio: Audio{
			Device: "default",
		},
		Transcription: Stage{
			MaxRetries: DefaultMaxRetries,
			BaseDelay:  DefaultBaseDelay,
		},
		Enhancement: Enhancement{
			Enabled:    true,
			MaxRetries: DefaultMaxRetries,
			BaseDelay:  DefaultBaseDelay,
		},
		Output: Output{
			Handler: "clipboard",
		},
		Indicator: Indicator{
			Terminal:      true,
			DesktopNotify: true,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}
