// Package config loads, defaults, and validates daemon configuration from a
// YAML file, environment variables, and an optional .env file.
package config

import "time"

type Config struct {
	Hotkey        Hotkey      `mapstructure:"hotkey"`
	Audio         Audio       `mapstructure:"audio"`
	Transcription Stage       `mapstructure:"transcription"`
	Enhancement   Enhancement `mapstructure:"enhancement"`
	Output        Output      `mapstructure:"output"`
	Indicator     Indicator   `mapstructure:"indicator"`
	Logging       Logging     `mapstructure:"logging"`
}

type Hotkey struct {
	// Mode is push_to_talk or toggle.
	Mode string `mapstructure:"mode"`
	Key  string `mapstructure:"key"`
}

type Audio struct {
	// Device matches a Pulse source id or description substring; empty or
	// "default" uses the server default source.
	Device string `mapstructure:"device"`
}

// Provider declares one link of a fallback chain.
type Provider struct {
	Name    string `mapstructure:"name"`
	Kind    string `mapstructure:"kind"`
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`

	// Transcription only.
	Language string `mapstructure:"language"`
	Prompt   string `mapstructure:"prompt"`

	// whisper.cpp only.
	Binary    string `mapstructure:"binary"`
	ModelPath string `mapstructure:"model_path"`

	// Enhancement only.
	SystemPrompt string  `mapstructure:"system_prompt"`
	Temperature  float64 `mapstructure:"temperature"`
}

// Stage holds one fallback chain plus its retry policy.
type Stage struct {
	Providers  []Provider    `mapstructure:"providers"`
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}

type Enhancement struct {
	Enabled    bool          `mapstructure:"enabled"`
	Providers  []Provider    `mapstructure:"providers"`
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}

type Output struct {
	// Handler is clipboard, type, console, or file.
	Handler       string   `mapstructure:"handler"`
	ClipboardArgv []string `mapstructure:"clipboard_argv"`
	TypeArgv      []string `mapstructure:"type_argv"`
	FilePath      string   `mapstructure:"file_path"`
}

type Indicator struct {
	Terminal      bool `mapstructure:"terminal"`
	DesktopNotify bool `mapstructure:"desktop_notify"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

// Loaded is the result of a config resolution pass.
type Loaded struct {
	Path     string
	Exists   bool
	Config   Config
	Warnings []string
}
