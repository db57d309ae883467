package vpiano

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const wavChannels = 2

type (
	// wavFormat is the RIFF header up to and including the mandatory part of
	// the fmt chunk.
	wavFormat struct {
		Riff          [4]byte
		ChunkSize     uint32
		Wave          [4]byte
		Fmt           [4]byte
		FmtSize       uint32
		Format        uint16
		Channels      uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
	}

	// wavFact follows the fmt chunk of IEEE float files.
	wavFact struct {
		ExtensionSize uint16
		Fact          [4]byte
		FactSize      uint32
		SampleLength  uint32
	}

	wavData struct {
		Data     [4]byte
		DataSize uint32
	}
)

// WriteWav writes interleaved stereo samples as a .wav file. With pcm16 the
// samples are clipped and converted to signed 16-bit integers, otherwise they
// are stored as 32-bit floats.
func WriteWav(w io.Writer, buffer []float32, sampleRate int, pcm16 bool) error {
	var b bytes.Buffer
	bytesPerSample := 4
	if pcm16 {
		bytesPerSample = 2
	}
	dataSize := bytesPerSample * len(buffer)
	format := wavFormat{
		Riff:          [4]byte{'R', 'I', 'F', 'F'},
		Wave:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		Channels:      wavChannels,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * wavChannels * bytesPerSample),
		BlockAlign:    uint16(wavChannels * bytesPerSample),
		BitsPerSample: uint16(8 * bytesPerSample),
	}
	if pcm16 {
		format.ChunkSize = uint32(36 + dataSize)
		format.FmtSize = 16
		format.Format = 1 // PCM
		binary.Write(&b, binary.LittleEndian, format)
	} else {
		format.ChunkSize = uint32(50 + dataSize)
		format.FmtSize = 18
		format.Format = 3 // IEEE float
		binary.Write(&b, binary.LittleEndian, format)
		binary.Write(&b, binary.LittleEndian, wavFact{
			Fact:         [4]byte{'f', 'a', 'c', 't'},
			FactSize:     4,
			SampleLength: uint32(len(buffer)),
		})
	}
	binary.Write(&b, binary.LittleEndian, wavData{Data: [4]byte{'d', 'a', 't', 'a'}, DataSize: uint32(dataSize)})
	var err error
	if pcm16 {
		samples := make([]int16, len(buffer))
		for i, v := range buffer {
			samples[i] = int16(math.Max(math.MinInt16+1, math.Min(math.MaxInt16, float64(v)*math.MaxInt16)))
		}
		err = binary.Write(&b, binary.LittleEndian, samples)
	} else {
		err = binary.Write(&b, binary.LittleEndian, buffer)
	}
	if err != nil {
		return fmt.Errorf("could not encode samples: %w", err)
	}
	if _, err := w.Write(b.Bytes()); err != nil {
		return fmt.Errorf("could not write .wav: %w", err)
	}
	return nil
}
