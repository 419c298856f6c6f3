package flow

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// SampleRate of synthesized speech, in Hz. Audio is mono.
const SampleRate = 24000

// DecodePCM16 turns base64 little-endian 16-bit mono PCM into samples in [-1, 1).
// An empty payload yields no samples.
func DecodePCM16(payload string) ([]float32, error) {
	if payload == "" {
		return nil, nil
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid audio payload: %w", err)
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("invalid audio payload: odd byte count %d", len(raw))
	}

	samples := make([]float32, len(raw)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[2*i:]))
		samples[i] = float32(v) / 32768.0
	}
	return samples, nil
}
