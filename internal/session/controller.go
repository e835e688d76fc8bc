// Package session orchestrates the dictation lifecycle: hotkey intents drive
// the recorder through the state machine, finished clips feed the pipeline,
// and the control socket exposes state and shutdown.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rodolfonobrega/audioscribe/internal/audio"
	"github.com/rodolfonobrega/audioscribe/internal/chain"
	"github.com/rodolfonobrega/audioscribe/internal/config"
	"github.com/rodolfonobrega/audioscribe/internal/fsm"
	"github.com/rodolfonobrega/audioscribe/internal/hotkey"
	"github.com/rodolfonobrega/audioscribe/internal/indicator"
	"github.com/rodolfonobrega/audioscribe/internal/ipc"
	"github.com/rodolfonobrega/audioscribe/internal/output"
	"github.com/rodolfonobrega/audioscribe/internal/pipeline"
	"github.com/rodolfonobrega/audioscribe/internal/transcript"
)

const drainTimeout = 30 * time.Second

// Recorder is the capture dependency, satisfied by audio.Recorder.
type Recorder interface {
	Start(ctx context.Context) error
	Stop() (audio.Clip, error)
	IsRecording() bool
}

// Options allows tests and one-shot commands to override wiring. Zero-value
// fields are built from configuration.
type Options struct {
	Logger      *slog.Logger
	Indicator   indicator.Controller
	Recorder    Recorder
	Transcriber *chain.Chain[audio.Clip, string]
	Enhancer    *chain.Chain[string, string]
	Handler     output.Handler
}

// Controller owns the running dictation session.
type Controller struct {
	cfg       config.Config
	logger    *slog.Logger
	indicator indicator.Controller

	transcriber *chain.Chain[audio.Clip, string]
	enhancer    *chain.Chain[string, string]
	worker      *pipeline.Worker
	listener    *hotkey.Listener
	recorder    Recorder

	mu      sync.Mutex
	state   fsm.State
	started bool

	runCtx   context.Context
	cancel   context.CancelFunc
	stopCh   chan struct{}
	stopOnce sync.Once
}

func New(cfg config.Config, opts Options) (*Controller, error) {
	logger := opts.Logger

	transcriber := opts.Transcriber
	if transcriber == nil {
		built, err := BuildTranscriber(cfg, logger)
		if err != nil {
			return nil, err
		}
		transcriber = built
	}

	enhancer := opts.Enhancer
	if enhancer == nil {
		built, err := BuildEnhancer(cfg, logger)
		if err != nil {
			return nil, err
		}
		enhancer = built
	}

	handler := opts.Handler
	if handler == nil {
		handler = buildHandler(cfg, logger)
	}

	ind := opts.Indicator
	if ind == nil {
		ind = indicator.New(cfg.Indicator, logger)
	}

	c := &Controller{
		cfg:         cfg,
		logger:      logger,
		indicator:   ind,
		transcriber: transcriber,
		enhancer:    enhancer,
		recorder:    opts.Recorder,
		state:       fsm.StateIdle,
		stopCh:      make(chan struct{}),
	}

	mode, err := hotkey.ParseMode(cfg.Hotkey.Mode)
	if err != nil {
		return nil, err
	}
	c.listener = hotkey.NewListener(mode, c.startCapture, c.stopCapture)

	worker, err := pipeline.NewWorker(pipeline.WorkerOptions{
		Transcriber: transcriber,
		Enhancer:    enhancer,
		Handler:     handler,
		Normalize:   transcript.DefaultOptions(),
		Logger:      logger,
		Notify:      c.onStage,
	})
	if err != nil {
		return nil, err
	}
	c.worker = worker

	return c, nil
}

// Start validates the provider chains, resolves the capture device, and
// launches the pipeline worker. Validation failure keeps the hotkey unarmed.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return errors.New("session already started")
	}
	c.mu.Unlock()

	if err := c.transcriber.Validate(ctx); err != nil {
		return fmt.Errorf("transcription chain not ready: %w", err)
	}
	if c.enhancer != nil {
		if err := c.enhancer.Validate(ctx); err != nil {
			return fmt.Errorf("enhancement chain not ready: %w", err)
		}
	}

	if c.recorder == nil {
		device, warning, err := audio.Pick(ctx, c.cfg.Audio.Device)
		if err != nil {
			return fmt.Errorf("resolve capture device: %w", err)
		}
		if warning != "" {
			c.logWarn(warning)
		}
		c.logInfo("capture device selected", "device", device.ID)
		c.recorder = audio.NewRecorder(device)
	}

	c.runCtx, c.cancel = context.WithCancel(context.Background())
	go c.worker.Run(c.runCtx)

	c.mu.Lock()
	c.started = true
	c.mu.Unlock()

	c.indicator.Hide(ctx)
	c.logInfo("session started", "mode", string(c.listener.Mode()))
	return nil
}

// Stop flushes any in-flight recording, drains the pipeline, and releases
// the worker. Drain timeouts are logged, not fatal.
func (c *Controller) Stop(ctx context.Context) {
	if c.listener.Active() {
		c.listener.Reset()
		c.stopCapture()
	}

	drainCtx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()
	if err := c.worker.Shutdown(drainCtx); err != nil {
		c.logWarn("pipeline drain incomplete", "error", err.Error())
	}
	if c.cancel != nil {
		c.cancel()
	}

	c.logStats()
	c.indicator.Hide(ctx)
	c.logInfo("session stopped")
}

// Done is closed when a stop command arrives over the control socket.
func (c *Controller) Done() <-chan struct{} {
	return c.stopCh
}

// Handle is the control socket entry point.
func (c *Controller) Handle(_ context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case ipc.CommandPress:
		c.listener.Handle(hotkey.Event{Key: req.Key, Edge: hotkey.EdgeDown})
		return ipc.Response{OK: true, State: c.StateString()}
	case ipc.CommandRelease:
		c.listener.Handle(hotkey.Event{Key: req.Key, Edge: hotkey.EdgeUp})
		return ipc.Response{OK: true, State: c.StateString()}
	case ipc.CommandToggle:
		c.listener.Toggle()
		return ipc.Response{OK: true, State: c.StateString()}
	case ipc.CommandStatus:
		return c.statusResponse()
	case ipc.CommandStop:
		c.stopOnce.Do(func() { close(c.stopCh) })
		return ipc.Response{OK: true, State: string(fsm.StateDraining), Message: "stopping"}
	default:
		return ipc.Response{Error: fmt.Sprintf("unknown command %q", req.Command)}
	}
}

// StateString reports the current lifecycle state.
func (c *Controller) StateString() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.state)
}

// ProcessClip runs one clip through the chains synchronously, bypassing the
// queue. Used by the file command.
func (c *Controller) ProcessClip(ctx context.Context, clip audio.Clip) (string, error) {
	return c.worker.Process(ctx, clip)
}

// EnhanceText runs the enhancement chain synchronously. Used by the text
// command. With enhancement disabled the input comes back unchanged.
func (c *Controller) EnhanceText(ctx context.Context, text string) (string, error) {
	if c.enhancer == nil {
		return transcript.Normalize(text, transcript.DefaultOptions()), nil
	}
	enhanced, err := c.enhancer.Execute(ctx, text)
	if err != nil {
		return "", err
	}
	return transcript.Normalize(enhanced, transcript.DefaultOptions()), nil
}

// startCapture is the listener's activation callback.
func (c *Controller) startCapture() {
	event := fsm.EventArm
	if c.listener.Mode() == hotkey.ModeToggle {
		event = fsm.EventActivate
	}

	c.mu.Lock()
	next, err := fsm.Transition(c.state, event)
	if err != nil {
		c.mu.Unlock()
		c.logWarn("capture start rejected", "error", err.Error())
		return
	}
	c.state = next
	ctx := c.runCtx
	c.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	if err := c.recorder.Start(ctx); err != nil {
		c.logWarn("recorder start failed", "error", err.Error())
		c.revertToIdle()
		c.indicator.Error(ctx, "Could not start recording")
		return
	}
	c.indicator.Recording(ctx)
	c.logInfo("recording started")
}

// stopCapture finalizes the active recording and enqueues the clip.
func (c *Controller) stopCapture() {
	event := fsm.EventRelease
	if c.listener.Mode() == hotkey.ModeToggle {
		event = fsm.EventDeactivate
	}

	c.mu.Lock()
	next, err := fsm.Transition(c.state, event)
	if err != nil {
		c.mu.Unlock()
		c.logWarn("capture stop rejected", "error", err.Error())
		return
	}
	c.state = next
	c.mu.Unlock()

	clip, err := c.recorder.Stop()
	c.revertToIdle()
	if err != nil {
		c.logWarn("recorder stop failed", "error", err.Error())
		return
	}

	if clip.Empty() {
		c.logInfo("empty clip discarded", "clip_id", clip.ID)
		c.indicator.Hide(context.Background())
		return
	}

	c.worker.Enqueue(clip)
	c.logInfo("clip queued", "clip_id", clip.ID, "duration_ms", clip.Duration.Milliseconds(), "pending", c.worker.Pending())
}

func (c *Controller) revertToIdle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if next, err := fsm.Transition(c.state, fsm.EventDrained); err == nil {
		c.state = next
	} else {
		c.state = fsm.StateIdle
	}
}

// onStage relays pipeline progress to the indicator.
func (c *Controller) onStage(stage pipeline.Stage, detail string) {
	ctx := context.Background()
	switch stage {
	case pipeline.StageTranscribing:
		c.indicator.Processing(ctx, "transcribing")
	case pipeline.StageEnhancing:
		c.indicator.Processing(ctx, "enhancing")
	case pipeline.StageDelivered:
		c.indicator.Delivered(ctx, "")
	case pipeline.StageError:
		c.indicator.Error(ctx, detail)
	}
}

func (c *Controller) statusResponse() ipc.Response {
	resp := ipc.Response{
		OK:         true,
		State:      c.StateString(),
		Pending:    c.worker.Pending(),
		Transcribe: chainStats(c.transcriber.Stats()),
	}
	if c.enhancer != nil {
		resp.Enhance = chainStats(c.enhancer.Stats())
	}
	return resp
}

func chainStats(s chain.Stats) *ipc.ChainStats {
	return &ipc.ChainStats{
		Usage:         s.Usage,
		FallbackCount: s.FallbackCount,
		Active:        s.Active,
		Providers:     s.Providers,
	}
}

func (c *Controller) logStats() {
	stats := c.transcriber.Stats()
	c.logInfo("transcription chain stats", "usage", stats.Usage, "fallbacks", stats.FallbackCount)
	if c.enhancer != nil {
		stats = c.enhancer.Stats()
		c.logInfo("enhancement chain stats", "usage", stats.Usage, "fallbacks", stats.FallbackCount)
	}
}

func (c *Controller) logInfo(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *Controller) logWarn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
