package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rodolfonobrega/audioscribe/internal/audio"
	"github.com/rodolfonobrega/audioscribe/internal/fault"
)

// WhisperCPPOptions configures a local whisper.cpp CLI transcriber.
type WhisperCPPOptions struct {
	Name      string
	Binary    string
	ModelPath string
	Language  string
}

// WhisperCPP shells out to the whisper.cpp CLI for fully offline
// transcription. It is the usual last link in the chain.
type WhisperCPP struct {
	name      string
	binary    string
	modelPath string
	language  string
}

func NewWhisperCPP(opts WhisperCPPOptions) *WhisperCPP {
	name := opts.Name
	if name == "" {
		name = "whisper.cpp"
	}
	binary := opts.Binary
	if binary == "" {
		binary = "whisper-cli"
	}
	return &WhisperCPP{
		name:      name,
		binary:    binary,
		modelPath: opts.ModelPath,
		language:  opts.Language,
	}
}

func (w *WhisperCPP) Name() string { return w.name }

func (w *WhisperCPP) Execute(ctx context.Context, clip audio.Clip) (string, error) {
	wavPath := filepath.Join(os.TempDir(), "audioscribe-"+clip.ID+".wav")
	if err := os.WriteFile(wavPath, clip.WAV, 0o600); err != nil {
		return "", fmt.Errorf("stage clip for %s: %w", w.name, err)
	}
	defer os.Remove(wavPath)

	args := []string{"-m", w.modelPath, "-f", wavPath, "--no-prints", "--no-timestamps"}
	if w.language != "" {
		args = append(args, "--language", w.language)
	}

	cmd := exec.CommandContext(ctx, w.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", fault.Wrap(fault.CodeInternal, w.name+" failed: "+detail, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// HealthCheck verifies the binary is on PATH and the model file exists.
func (w *WhisperCPP) HealthCheck(_ context.Context) error {
	if _, err := exec.LookPath(w.binary); err != nil {
		return fault.Wrap(fault.CodeNotFound, fmt.Sprintf("%s binary %q not found", w.name, w.binary), err)
	}
	if w.modelPath == "" {
		return fault.New(fault.CodeBadRequest, w.name+" model path is not configured")
	}
	if _, err := os.Stat(w.modelPath); err != nil {
		return fault.Wrap(fault.CodeNotFound, fmt.Sprintf("%s model %q not found", w.name, w.modelPath), err)
	}
	return nil
}
