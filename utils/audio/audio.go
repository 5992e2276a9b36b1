package audio

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/zaf/g711"
)

// DefaultTelephonySampleRate is the sample rate of G.711 telephone audio.
const DefaultTelephonySampleRate = 8000

// PCMToWav wraps 16-bit little-endian PCM into a WAV container.
// Supports mono or stereo.
func PCMToWav(pcm []byte, numChannels, sampleRate int) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, errors.New("PCM data is empty")
	}
	if numChannels != 1 && numChannels != 2 {
		return nil, errors.New("only mono (1) or stereo (2) channels supported")
	}
	if sampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}
	if len(pcm)%(2*numChannels) != 0 {
		return nil, errors.New("PCM data length doesn't match channel count")
	}

	const (
		bitsPerSample  = 16
		audioFormatPCM = 1
		subchunk1Size  = 16
	)

	blockAlign := numChannels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign
	dataSize := len(pcm)
	fileSize := 36 + dataSize // header bytes after the RIFF size field

	buf := bytes.NewBuffer(make([]byte, 0, 44+dataSize))

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(subchunk1Size))
	binary.Write(buf, binary.LittleEndian, uint16(audioFormatPCM))
	binary.Write(buf, binary.LittleEndian, uint16(numChannels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(pcm)

	return buf.Bytes(), nil
}

// UlawToPCM decodes G.711 μ-law bytes to 16-bit little-endian PCM.
func UlawToPCM(ulaw []byte) ([]byte, error) {
	if len(ulaw) == 0 {
		return nil, errors.New("ulaw data is empty")
	}
	return g711.DecodeUlaw(ulaw), nil
}

// UlawToWav decodes mono G.711 μ-law telephone audio and wraps it into a WAV
// container so it can be submitted to transcription providers that reject raw
// telephony payloads.
func UlawToWav(ulaw []byte, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultTelephonySampleRate
	}
	pcm, err := UlawToPCM(ulaw)
	if err != nil {
		return nil, err
	}
	return PCMToWav(pcm, 1, sampleRate)
}

// IsTelephonyContentType reports whether an uploaded audio MIME type denotes
// raw G.711 μ-law audio.
func IsTelephonyContentType(contentType string) bool {
	switch contentType {
	case "audio/basic", "audio/PCMU", "audio/pcmu":
		return true
	default:
		return false
	}
}
