package audio

import (
	"bytes"
	"encoding/binary"
)

func samplesToWav(samples []int16, sampleRate int) []byte {
	var buf bytes.Buffer

	dataSize := len(samples) * 2
	fileSize := 36 + dataSize

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, int32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, int32(16))
	binary.Write(&buf, binary.LittleEndian, int16(1))
	binary.Write(&buf, binary.LittleEndian, int16(1))
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, int16(2))
	binary.Write(&buf, binary.LittleEndian, int16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, int32(dataSize))
	binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// silenceGate tracks speech versus silence over a stream of sample frames.
type silenceGate struct {
	threshold int16
	heard     bool
	silent    int
}

// feed records one frame and returns the number of trailing silent samples.
func (g *silenceGate) feed(frame []int16) int {
	for _, s := range frame {
		if s > g.threshold || s < -g.threshold {
			g.heard = true
			g.silent = 0
			return 0
		}
	}
	g.silent += len(frame)
	return g.silent
}

// scaleVolume converts little-endian PCM bytes to samples scaled by volume.
func scaleVolume(pcm []byte, out []int16, volume float64) int {
	n := min(len(pcm)/2, len(out))
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[2*i:]))
		out[i] = int16(float64(s) * volume)
	}
	return n
}
