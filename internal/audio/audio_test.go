package audio

import (
	"context"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPickFromListDefault(t *testing.T) {
	devices := []Device{
		{ID: "usb-mic", Description: "Blue Yeti", Available: true, Default: true},
		{ID: "headset", Description: "Jabra Evolve", Available: true},
	}

	picked, warning, err := pickFromList(devices, "default")
	require.NoError(t, err)
	require.Equal(t, "usb-mic", picked.ID)
	require.Empty(t, warning)
}

func TestPickFromListByDescription(t *testing.T) {
	devices := []Device{
		{ID: "usb-mic", Description: "Blue Yeti", Available: true, Default: true},
		{ID: "headset", Description: "Jabra Evolve", Available: true},
	}

	picked, warning, err := pickFromList(devices, "jabra")
	require.NoError(t, err)
	require.Equal(t, "headset", picked.ID)
	require.Empty(t, warning)
}

func TestPickFromListFallsBackToDefault(t *testing.T) {
	devices := []Device{
		{ID: "usb-mic", Description: "Blue Yeti", Available: true, Default: true},
		{ID: "headset", Description: "Jabra Evolve", Available: true, Muted: true},
	}

	picked, warning, err := pickFromList(devices, "headset")
	require.NoError(t, err)
	require.Equal(t, "usb-mic", picked.ID)
	require.Contains(t, warning, "muted")
}

func TestPickFromListErrors(t *testing.T) {
	_, _, err := pickFromList(nil, "default")
	require.Error(t, err)

	devices := []Device{{ID: "usb-mic", Available: true, Default: true}}
	_, _, err = pickFromList(devices, "missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "did not match")

	muted := []Device{{ID: "usb-mic", Available: true, Muted: true, Default: true}}
	_, _, err = pickFromList(muted, "default")
	require.Error(t, err)
	require.Contains(t, err.Error(), "muted")
}

func TestMatches(t *testing.T) {
	dev := Device{ID: "alsa_input.usb-blue_yeti", Description: "Blue Yeti Stereo"}
	require.True(t, matches(dev, "yeti"))
	require.True(t, matches(dev, "blue yeti stereo"))
	require.False(t, matches(dev, "shure"))
	require.False(t, matches(dev, ""))
}

func TestListDevicesFailsWhenPulseUnavailable(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/audioscribe-missing-pulse")
	_, err := ListDevices(context.Background())
	require.Error(t, err)
}

func TestEncodeWAVHeader(t *testing.T) {
	pcm := []byte{1, 2, 3, 4, 5, 6}
	wav := EncodeWAV(pcm)

	require.Len(t, wav, 44+len(pcm))
	require.Equal(t, "RIFF", string(wav[0:4]))
	require.Equal(t, "WAVE", string(wav[8:12]))
	require.Equal(t, "data", string(wav[36:40]))
	require.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
	require.Equal(t, uint32(SampleRate), binary.LittleEndian.Uint32(wav[24:28]))
	require.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]))
	require.Equal(t, pcm, wav[44:])
}

func TestClipEmpty(t *testing.T) {
	require.True(t, Clip{WAV: EncodeWAV(nil)}.Empty())
	require.False(t, Clip{WAV: EncodeWAV(make([]byte, 320))}.Empty())
}

func TestPCMDurationSeconds(t *testing.T) {
	// One second of 16kHz mono s16 is 32000 bytes.
	require.InDelta(t, 1.0, PCMDurationSeconds(32000), 1e-9)
	require.InDelta(t, 0.5, PCMDurationSeconds(16000), 1e-9)
}

func TestRecorderStopWithoutStart(t *testing.T) {
	rec := NewRecorder(Device{ID: "usb-mic"})
	require.False(t, rec.IsRecording())
	_, err := rec.Stop()
	require.Error(t, err)
}

func TestRecorderOnPCMRejectsWhenIdle(t *testing.T) {
	rec := NewRecorder(Device{ID: "usb-mic"})
	n, err := rec.onPCM([]byte{1, 2, 3})
	require.Equal(t, 0, n)
	require.ErrorIs(t, err, io.EOF)
}

func TestRecorderOnPCMAccumulates(t *testing.T) {
	rec := NewRecorder(Device{ID: "usb-mic"})
	rec.recording = true

	n, err := rec.onPCM([]byte{1, 2})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	n, err = rec.onPCM([]byte{3, 4})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	clip, err := rec.Stop()
	require.NoError(t, err)
	require.NotEmpty(t, clip.ID)
	require.Equal(t, []byte{1, 2, 3, 4}, clip.WAV[44:])
	require.Equal(t, "usb-mic", clip.Device)
	require.False(t, rec.IsRecording())
}
