// Package indicator surfaces capture and pipeline state to the user through
// a terminal status line and replaceable desktop notifications.
package indicator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/rodolfonobrega/audioscribe/internal/config"
)

// Controller is the session-facing indicator contract.
type Controller interface {
	Recording(context.Context)
	Processing(context.Context, string)
	Delivered(context.Context, string)
	Error(context.Context, string)
	Hide(context.Context)
}

// Notify implements Controller over the configured surfaces.
type Notify struct {
	cfg      config.Indicator
	logger   *slog.Logger
	terminal io.Writer

	mu             sync.Mutex
	notificationID uint32
}

// New builds the indicator. Terminal output goes to stderr so transcripts on
// stdout stay clean.
func New(cfg config.Indicator, logger *slog.Logger) *Notify {
	return &Notify{cfg: cfg, logger: logger, terminal: os.Stderr}
}

func (n *Notify) Recording(ctx context.Context) {
	n.echo("recording")
	n.notify(ctx, "Recording…", 300000)
}

func (n *Notify) Processing(ctx context.Context, stage string) {
	if stage == "" {
		stage = "processing"
	}
	n.echo(stage)
	n.notify(ctx, "Transcribing…", 300000)
}

func (n *Notify) Delivered(ctx context.Context, summary string) {
	n.echo("ready")
	if summary == "" {
		n.dismiss(ctx)
		return
	}
	n.notify(ctx, summary, 1500)
}

func (n *Notify) Error(ctx context.Context, text string) {
	if text == "" {
		text = "Speech recognition error"
	}
	n.echo("error: " + text)
	n.notify(ctx, text, 2500)
}

func (n *Notify) Hide(ctx context.Context) {
	n.echo("idle")
	n.dismiss(ctx)
}

func (n *Notify) echo(status string) {
	if !n.cfg.Terminal || n.terminal == nil {
		return
	}
	fmt.Fprintf(n.terminal, "[audioscribe] %s\n", status)
}

// notify sends a replaceable desktop notification with a bounded timeout.
func (n *Notify) notify(ctx context.Context, text string, timeoutMS int) {
	if !n.cfg.DesktopNotify {
		return
	}

	n.mu.Lock()
	replaceID := n.notificationID
	n.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, 400*time.Millisecond)
	defer cancel()

	id, err := desktopNotify(callCtx, "audioscribe", replaceID, text, timeoutMS)
	if err != nil {
		n.log("desktop notification failed", err)
		return
	}

	n.mu.Lock()
	n.notificationID = id
	n.mu.Unlock()
}

func (n *Notify) dismiss(ctx context.Context) {
	if !n.cfg.DesktopNotify {
		return
	}

	n.mu.Lock()
	id := n.notificationID
	n.notificationID = 0
	n.mu.Unlock()
	if id == 0 {
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, 400*time.Millisecond)
	defer cancel()
	if err := desktopDismiss(callCtx, id); err != nil {
		n.log("desktop dismiss failed", err)
	}
}

func (n *Notify) log(message string, err error) {
	if n.logger == nil || err == nil {
		return
	}
	n.logger.Debug(message, "error", err.Error())
}

// Nop is the indicator used by one-shot commands.
type Nop struct{}

func (Nop) Recording(context.Context)          {}
func (Nop) Processing(context.Context, string) {}
func (Nop) Delivered(context.Context, string)  {}
func (Nop) Error(context.Context, string)      {}
func (Nop) Hide(context.Context)               {}
