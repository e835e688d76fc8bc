// Package app dispatches parsed CLI commands: it runs the daemon, forwards
// hotkey commands to a running daemon, and handles one-shot utilities.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/rodolfonobrega/audioscribe/internal/audio"
	"github.com/rodolfonobrega/audioscribe/internal/cli"
	"github.com/rodolfonobrega/audioscribe/internal/config"
	"github.com/rodolfonobrega/audioscribe/internal/doctor"
	"github.com/rodolfonobrega/audioscribe/internal/indicator"
	"github.com/rodolfonobrega/audioscribe/internal/ipc"
	"github.com/rodolfonobrega/audioscribe/internal/logging"
	"github.com/rodolfonobrega/audioscribe/internal/output"
	"github.com/rodolfonobrega/audioscribe/internal/session"
	"github.com/rodolfonobrega/audioscribe/internal/version"
)

const forwardTimeout = 220 * time.Millisecond

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("audioscribe"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("audioscribe"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	for _, warning := range cfgLoaded.Warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", warning)
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	cfg := cfgLoaded.Config
	if parsed.NoLLM {
		cfg.Enhancement.Enabled = false
	}
	if parsed.Output != "" && parsed.Command == cli.CommandRun {
		cfg.Output.Handler = parsed.Output
	}

	logRuntime, err := logging.New(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	logger.Info("command start",
		"command", string(parsed.Command),
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandRun:
		return r.commandRun(ctx, cfg, logger)
	case cli.CommandPress:
		return r.commandKey(ctx, cfg, ipc.CommandPress, parsed.Arg)
	case cli.CommandRelease:
		return r.commandKey(ctx, cfg, ipc.CommandRelease, parsed.Arg)
	case cli.CommandToggle:
		return r.forwardOrFail(ctx, ipc.Request{Command: ipc.CommandToggle})
	case cli.CommandStop:
		return r.forwardOrFail(ctx, ipc.Request{Command: ipc.CommandStop})
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandFile:
		return r.commandFile(ctx, cfg, logger, parsed.Arg, parsed.Output)
	case cli.CommandText:
		return r.commandText(ctx, cfg, logger, parsed.Arg, parsed.Output)
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded, logger)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// commandRun owns the daemon lifecycle: control socket, session, shutdown.
func (r Runner) commandRun(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.DefaultSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Listen(ctx, socketPath, forwardTimeout)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	controller, err := session.New(cfg, session.Options{Logger: logger})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if err := controller.Start(ctx); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("session start failed", "error", err.Error())
		return 1
	}

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(serverCtx, listener, controller)
	}()

	fmt.Fprintf(r.Stdout, "audioscribe listening on %s\n", socketPath)

	var serverErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case <-controller.Done():
		logger.Info("stop command received")
	case serverErr = <-serverErrCh:
	}

	serverCancel()
	if serverErr == nil {
		serverErr = <-serverErrCh
	}
	controller.Stop(context.Background())

	if serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serverErr)
		return 1
	}
	return 0
}

// commandKey forwards a press or release edge. The configured hotkey is
// assumed when the keybinding does not name one.
func (r Runner) commandKey(ctx context.Context, cfg config.Config, command string, key string) int {
	if key == "" {
		key = cfg.Hotkey.Key
	}
	return r.forwardOrFail(ctx, ipc.Request{Command: command, Key: key})
}

func (r Runner) forwardOrFail(ctx context.Context, req ipc.Request) int {
	socketPath, err := ipc.DefaultSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, req)
	if !handled {
		fmt.Fprintln(r.Stderr, "error: no active audioscribe daemon")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.DefaultSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, ipc.Request{Command: ipc.CommandStatus})
	if !handled {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	state := resp.State
	if state == "" {
		state = "idle"
	}
	fmt.Fprintln(r.Stdout, state)
	if resp.Pending > 0 {
		fmt.Fprintf(r.Stdout, "pending: %d\n", resp.Pending)
	}
	if resp.Transcribe != nil {
		fmt.Fprintf(r.Stdout, "transcribe: %s\n", formatChainStats(*resp.Transcribe))
	}
	if resp.Enhance != nil {
		fmt.Fprintf(r.Stdout, "enhance: %s\n", formatChainStats(*resp.Enhance))
	}
	return 0
}

func formatChainStats(s ipc.ChainStats) string {
	parts := make([]string, 0, len(s.Usage)+2)
	if s.Active != "" {
		parts = append(parts, "active="+s.Active)
	}
	parts = append(parts, fmt.Sprintf("fallbacks=%d", s.FallbackCount))

	names := make([]string, 0, len(s.Usage))
	for name := range s.Usage {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, s.Usage[name]))
	}
	return strings.Join(parts, " ")
}

// commandFile transcribes one WAV file synchronously, bypassing the queue.
func (r Runner) commandFile(ctx context.Context, cfg config.Config, logger *slog.Logger, path string, handlerName string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(data) <= 44 || !bytes.HasPrefix(data, []byte("RIFF")) {
		fmt.Fprintf(r.Stderr, "error: %s does not look like a WAV file\n", path)
		return 1
	}

	controller, err := session.New(cfg, session.Options{Logger: logger, Indicator: indicator.Nop{}})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	clip := audio.Clip{
		ID:       strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		WAV:      data,
		Duration: time.Duration(audio.PCMDurationSeconds(len(data)-44) * float64(time.Second)),
	}
	text, err := controller.ProcessClip(ctx, clip)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(r.Stderr, "no speech detected")
		return 1
	}
	return r.deliver(ctx, cfg, handlerName, text)
}

// commandText runs raw text through the enhancement chain.
func (r Runner) commandText(ctx context.Context, cfg config.Config, logger *slog.Logger, text string, handlerName string) int {
	controller, err := session.New(cfg, session.Options{Logger: logger, Indicator: indicator.Nop{}})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	enhanced, err := controller.EnhanceText(ctx, text)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return r.deliver(ctx, cfg, handlerName, enhanced)
}

// deliver prints to stdout unless --output named a handler.
func (r Runner) deliver(ctx context.Context, cfg config.Config, handlerName string, text string) int {
	if handlerName == "" {
		fmt.Fprintln(r.Stdout, text)
		return 0
	}

	handler, err := output.ForName(handlerName, output.Options{
		ClipboardArgv: cfg.Output.ClipboardArgv,
		TypeArgv:      cfg.Output.TypeArgv,
		FilePath:      cfg.Output.FilePath,
		ConsoleWriter: r.Stdout,
	})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if err := handler.Deliver(ctx, text); err != nil {
		fmt.Fprintf(r.Stderr, "error: deliver via %s: %v\n", handler.Name(), err)
		return 1
	}
	return 0
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			availability,
			muted,
		)
	}

	return 0
}

func tryForward(ctx context.Context, socketPath string, req ipc.Request) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, req, forwardTimeout)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) || isConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", req.Command, err)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
