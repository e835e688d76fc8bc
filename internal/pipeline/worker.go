package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rodolfonobrega/audioscribe/internal/audio"
	"github.com/rodolfonobrega/audioscribe/internal/chain"
	"github.com/rodolfonobrega/audioscribe/internal/output"
	"github.com/rodolfonobrega/audioscribe/internal/transcript"
)

// Stage identifies where a clip is in the processing loop, for indicators.
type Stage string

const (
	StageTranscribing Stage = "transcribing"
	StageEnhancing    Stage = "enhancing"
	StageDelivered    Stage = "delivered"
	StageError        Stage = "error"
)

// Worker drains the clip queue on a single goroutine. One clip is fully
// processed and delivered before the next is started.
type Worker struct {
	queue       *Queue[audio.Clip]
	transcriber *chain.Chain[audio.Clip, string]
	enhancer    *chain.Chain[string, string]
	handler     output.Handler
	normalize   transcript.Options
	logger      *slog.Logger
	notify      func(Stage, string)

	done chan struct{}
}

// WorkerOptions wires the processing dependencies. Enhancer may be nil when
// enhancement is disabled; Notify may be nil.
type WorkerOptions struct {
	Transcriber *chain.Chain[audio.Clip, string]
	Enhancer    *chain.Chain[string, string]
	Handler     output.Handler
	Normalize   transcript.Options
	Logger      *slog.Logger
	Notify      func(Stage, string)
}

func NewWorker(opts WorkerOptions) (*Worker, error) {
	if opts.Transcriber == nil {
		return nil, errors.New("worker requires a transcription chain")
	}
	if opts.Handler == nil {
		return nil, errors.New("worker requires an output handler")
	}
	return &Worker{
		queue:       NewQueue[audio.Clip](),
		transcriber: opts.Transcriber,
		enhancer:    opts.Enhancer,
		handler:     opts.Handler,
		normalize:   opts.Normalize,
		logger:      opts.Logger,
		notify:      opts.Notify,
		done:        make(chan struct{}),
	}, nil
}

// Enqueue hands a finished clip to the worker.
func (w *Worker) Enqueue(clip audio.Clip) {
	w.queue.Enqueue(clip)
}

// Pending reports clips waiting behind the one in flight.
func (w *Worker) Pending() int {
	return w.queue.Len()
}

// Run processes clips until the queue is closed and drained or the context
// ends. It is meant to run on its own goroutine.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	for {
		clip, ok := w.queue.Dequeue(ctx)
		if !ok {
			return
		}
		w.handle(ctx, clip)
	}
}

// Shutdown closes the queue so Run exits after flushing queued clips, then
// waits for the loop to finish or the context to end.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.queue.Close()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pipeline drain: %w", ctx.Err())
	}
}

func (w *Worker) handle(ctx context.Context, clip audio.Clip) {
	text, err := w.Process(ctx, clip)
	if err != nil {
		w.logWarn("clip dropped", "clip_id", clip.ID, "error", err.Error())
		w.signal(StageError, err.Error())
		return
	}
	if text == "" {
		w.logInfo("clip produced no text", "clip_id", clip.ID)
		w.signal(StageDelivered, "")
		return
	}

	if err := w.handler.Deliver(ctx, text); err != nil {
		w.logWarn("delivery failed", "clip_id", clip.ID, "handler", w.handler.Name(), "error", err.Error())
		w.signal(StageError, err.Error())
		return
	}
	w.logInfo("transcript delivered", "clip_id", clip.ID, "handler", w.handler.Name(), "chars", len(text))
	w.signal(StageDelivered, text)
}

// Process runs a single clip through transcription, enhancement, and
// normalization without delivering it. Exhausting the transcription chain is
// fatal for the clip; exhausting the enhancement chain degrades to the raw
// transcript.
func (w *Worker) Process(ctx context.Context, clip audio.Clip) (string, error) {
	if clip.Empty() {
		return "", nil
	}

	w.signal(StageTranscribing, clip.ID)
	raw, err := w.transcriber.Execute(ctx, clip)
	if err != nil {
		return "", fmt.Errorf("transcribe clip %s: %w", clip.ID, err)
	}

	text := w.Enhance(ctx, raw)
	return transcript.Normalize(text, w.normalize), nil
}

// Enhance runs the enhancement chain, returning the raw transcript untouched
// when enhancement is disabled or every provider fails.
func (w *Worker) Enhance(ctx context.Context, raw string) string {
	if w.enhancer == nil || raw == "" {
		return raw
	}

	w.signal(StageEnhancing, "")
	enhanced, err := w.enhancer.Execute(ctx, raw)
	if err != nil {
		w.logWarn("enhancement exhausted, delivering raw transcript", "error", err.Error())
		return raw
	}
	return enhanced
}

func (w *Worker) signal(stage Stage, detail string) {
	if w.notify != nil {
		w.notify(stage, detail)
	}
}

func (w *Worker) logInfo(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Info(msg, args...)
	}
}

func (w *Worker) logWarn(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Warn(msg, args...)
	}
}
