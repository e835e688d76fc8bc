package audio

import "encoding/binary"

const (
	// SampleRate is the capture rate expected by the transcription models.
	SampleRate = 16000
	channels   = 1
	sampleBits = 16
)

// EncodeWAV wraps raw little-endian PCM16 samples in a minimal RIFF header.
func EncodeWAV(pcm []byte) []byte {
	byteRate := SampleRate * channels * (sampleBits / 8)
	blockAlign := channels * (sampleBits / 8)

	out := make([]byte, 44+len(pcm))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+len(pcm)))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], channels)
	binary.LittleEndian.PutUint32(out[24:28], SampleRate)
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], sampleBits)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(pcm)))
	copy(out[44:], pcm)
	return out
}

// PCMDurationSeconds reports the play length of raw PCM16 mono bytes.
func PCMDurationSeconds(pcmBytes int) float64 {
	return float64(pcmBytes) / float64(SampleRate*channels*(sampleBits/8))
}
