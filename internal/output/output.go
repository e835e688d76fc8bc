// Package output delivers finished transcripts to their destination.
package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// Handler applies one delivery side effect for a finished transcript.
type Handler interface {
	Name() string
	Deliver(ctx context.Context, text string) error
}

// Options carries per-sink settings resolved from configuration.
type Options struct {
	ClipboardArgv []string
	TypeArgv      []string
	FilePath      string
	ConsoleWriter io.Writer
}

// ForName resolves a configured handler name. Unknown names are an error so
// the caller can decide on a fallback.
func ForName(name string, opts Options) (Handler, error) {
	switch name {
	case "clipboard":
		return NewClipboard(opts.ClipboardArgv), nil
	case "type":
		return NewTyper(opts.TypeArgv), nil
	case "file":
		return NewFile(opts.FilePath)
	case "console", "":
		return NewConsole(opts.ConsoleWriter), nil
	default:
		return nil, fmt.Errorf("unknown output handler %q", name)
	}
}

// Clipboard pipes the transcript into a clipboard setter such as wl-copy.
type Clipboard struct {
	argv []string
}

func NewClipboard(argv []string) *Clipboard {
	if len(argv) == 0 {
		argv = []string{"wl-copy"}
	}
	return &Clipboard{argv: argv}
}

func (c *Clipboard) Name() string { return "clipboard" }

func (c *Clipboard) Deliver(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := runCommandWithInput(ctx, c.argv, text); err != nil {
		return fmt.Errorf("set clipboard: %w", err)
	}
	return nil
}

// Typer injects the transcript as synthetic keystrokes via wtype.
type Typer struct {
	argv []string
}

func NewTyper(argv []string) *Typer {
	if len(argv) == 0 {
		argv = []string{"wtype", "-"}
	}
	return &Typer{argv: argv}
}

func (t *Typer) Name() string { return "type" }

func (t *Typer) Deliver(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := runCommandWithInput(ctx, t.argv, text); err != nil {
		return fmt.Errorf("type transcript: %w", err)
	}
	return nil
}

// Console prints the transcript to stdout, used by one-shot invocations.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

func (c *Console) Name() string { return "console" }

func (c *Console) Deliver(_ context.Context, text string) error {
	if _, err := fmt.Fprintln(c.w, text); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// File appends transcripts to a log file, one per line.
type File struct {
	path string
}

func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("file output requires a path")
	}
	return &File{path: path}, nil
}

func (f *File) Name() string { return "file" }

func (f *File) Deliver(_ context.Context, text string) error {
	handle, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open transcript file: %w", err)
	}
	defer handle.Close()
	if _, err := fmt.Fprintln(handle, text); err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}
	return nil
}

// runCommandWithInput executes argv and writes input to its stdin.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin for %s: %w", argv[0], err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start command %s: %w", argv[0], err)
	}

	if input != "" {
		if _, err := stdin.Write([]byte(input)); err != nil {
			_ = stdin.Close()
			_ = cmd.Wait()
			return fmt.Errorf("write stdin for %s: %w", argv[0], err)
		}
	}
	_ = stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait for %s: %w", argv[0], err)
	}
	return nil
}
