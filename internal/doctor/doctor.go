// Package doctor runs readiness diagnostics for config, output tooling,
// audio capture, and the provider chains.
package doctor

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/rodolfonobrega/audioscribe/internal/audio"
	"github.com/rodolfonobrega/audioscribe/internal/config"
	"github.com/rodolfonobrega/audioscribe/internal/session"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output.
type Report struct {
	Checks []Check
}

// OK reports whether every check passed.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", status, check.Name, check.Message)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes config, tooling, audio, and provider readiness checks.
func Run(ctx context.Context, loaded config.Loaded, logger *slog.Logger) Report {
	cfg := loaded.Config
	checks := []Check{configCheck(loaded)}
	checks = append(checks, warningChecks(loaded)...)
	checks = append(checks, outputCheck(cfg))
	checks = append(checks, audioCheck(ctx, cfg))
	checks = append(checks, chainChecks(ctx, cfg, logger)...)
	return Report{Checks: checks}
}

func configCheck(loaded config.Loaded) Check {
	if loaded.Exists {
		return Check{Name: "config", Pass: true, Message: fmt.Sprintf("loaded %q", loaded.Path)}
	}
	return Check{Name: "config", Pass: true, Message: fmt.Sprintf("%q not found, using defaults and environment", loaded.Path)}
}

func warningChecks(loaded config.Loaded) []Check {
	checks := make([]Check, 0, len(loaded.Warnings))
	for _, warning := range loaded.Warnings {
		checks = append(checks, Check{Name: "config.warning", Pass: false, Message: warning})
	}
	return checks
}

func outputCheck(cfg config.Config) Check {
	switch cfg.Output.Handler {
	case "clipboard":
		argv := cfg.Output.ClipboardArgv
		if len(argv) == 0 {
			argv = []string{"wl-copy"}
		}
		return binaryCheck("output.clipboard", argv[0])
	case "type":
		argv := cfg.Output.TypeArgv
		if len(argv) == 0 {
			argv = []string{"wtype"}
		}
		return binaryCheck("output.type", argv[0])
	case "file":
		return Check{Name: "output.file", Pass: cfg.Output.FilePath != "", Message: cfg.Output.FilePath}
	default:
		return Check{Name: "output.console", Pass: true, Message: "writing transcripts to stdout"}
	}
}

func binaryCheck(name string, bin string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: name, Pass: true, Message: "found at " + path}
}

// audioCheck runs live device selection to surface capture problems early.
func audioCheck(ctx context.Context, cfg config.Config) Check {
	device, warning, err := audio.Pick(ctx, cfg.Audio.Device)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", device.ID)
	if warning != "" {
		message += " (" + warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// chainChecks health-probes every provider in both chains.
func chainChecks(ctx context.Context, cfg config.Config, logger *slog.Logger) []Check {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var checks []Check

	if transcriber, err := session.BuildTranscriber(cfg, logger); err != nil {
		checks = append(checks, Check{Name: "chain.transcribe", Pass: false, Message: err.Error()})
	} else if err := transcriber.Validate(probeCtx); err != nil {
		checks = append(checks, Check{Name: "chain.transcribe", Pass: false, Message: err.Error()})
	} else {
		checks = append(checks, Check{Name: "chain.transcribe", Pass: true,
			Message: fmt.Sprintf("%d provider(s) healthy", len(cfg.Transcription.Providers))})
	}

	if !cfg.Enhancement.Enabled {
		checks = append(checks, Check{Name: "chain.enhance", Pass: true, Message: "enhancement disabled"})
		return checks
	}

	if enhancer, err := session.BuildEnhancer(cfg, logger); err != nil {
		checks = append(checks, Check{Name: "chain.enhance", Pass: false, Message: err.Error()})
	} else if err := enhancer.Validate(probeCtx); err != nil {
		checks = append(checks, Check{Name: "chain.enhance", Pass: false, Message: err.Error()})
	} else {
		checks = append(checks, Check{Name: "chain.enhance", Pass: true,
			Message: fmt.Sprintf("%d provider(s) healthy", len(cfg.Enhancement.Providers))})
	}
	return checks
}
