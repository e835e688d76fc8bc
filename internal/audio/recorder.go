package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// Clip is one finished recording ready for transcription.
type Clip struct {
	ID         string
	WAV        []byte
	Device     string
	CapturedAt time.Time
	Duration   time.Duration
}

// Empty reports whether the clip holds no PCM payload beyond the header.
func (c Clip) Empty() bool {
	return len(c.WAV) <= 44
}

// Recorder accumulates PCM from one Pulse source between Start and Stop.
// A Recorder is reusable: Stop returns the finished clip and resets it.
type Recorder struct {
	device Device

	mu        sync.Mutex
	client    *pulse.Client
	stream    *pulse.RecordStream
	pcm       []byte
	recording bool
	startedAt time.Time
}

func NewRecorder(device Device) *Recorder {
	return &Recorder{device: device}
}

// Device returns the capture source metadata for logging.
func (r *Recorder) Device() Device {
	return r.device
}

func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Start opens a 16kHz mono s16 record stream and begins accumulating PCM.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return errors.New("recorder already active")
	}

	client, err := pulse.NewClient(
		pulse.ClientApplicationName("audioscribe"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}

	source, err := client.SourceByID(r.device.ID)
	if err != nil {
		client.Close()
		return fmt.Errorf("resolve source %q: %w", r.device.ID, err)
	}

	stream, err := client.NewRecord(
		pulse.NewWriter(writerFunc(r.onPCM), pulseproto.FormatInt16LE),
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(SampleRate),
		pulse.RecordMediaName("audioscribe dictation"),
	)
	if err != nil {
		client.Close()
		return fmt.Errorf("create pulse record stream: %w", err)
	}

	r.client = client
	r.stream = stream
	r.pcm = nil
	r.recording = true
	r.startedAt = time.Now()
	stream.Start()

	go func() {
		<-ctx.Done()
		_, _ = r.Stop()
	}()

	return nil
}

// Stop halts the stream and returns the accumulated PCM as a WAV clip.
func (r *Recorder) Stop() (Clip, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return Clip{}, errors.New("recorder is not active")
	}
	r.recording = false
	stream := r.stream
	client := r.client
	r.stream = nil
	r.client = nil
	r.mu.Unlock()

	if stream != nil {
		stream.Stop()
		stream.Close()
	}
	if client != nil {
		client.Close()
	}

	r.mu.Lock()
	pcm := r.pcm
	r.pcm = nil
	startedAt := r.startedAt
	r.mu.Unlock()

	return Clip{
		ID:         uuid.NewString(),
		WAV:        EncodeWAV(pcm),
		Device:     r.device.ID,
		CapturedAt: startedAt,
		Duration:   time.Duration(PCMDurationSeconds(len(pcm)) * float64(time.Second)),
	}, nil
}

// onPCM receives raw Pulse frames while the stream is live.
func (r *Recorder) onPCM(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return 0, io.EOF
	}
	r.pcm = append(r.pcm, buffer...)
	return len(buffer), nil
}

// writerFunc adapts a function to io.Writer for pulse.NewWriter.
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	return f(b)
}
