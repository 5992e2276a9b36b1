package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestPCMToWavHeader(t *testing.T) {
	pcm := make([]byte, 320) // 160 mono samples
	wav, err := PCMToWav(pcm, 1, 8000)
	if err != nil {
		t.Fatalf("PCMToWav failed: %v", err)
	}
	if len(wav) != 44+len(pcm) {
		t.Fatalf("expected %d bytes, got %d", 44+len(pcm), len(wav))
	}

	if !bytes.Equal(wav[0:4], []byte("RIFF")) || !bytes.Equal(wav[8:12], []byte("WAVE")) {
		t.Fatalf("bad container markers: %q %q", wav[0:4], wav[8:12])
	}
	if got := binary.LittleEndian.Uint32(wav[4:8]); got != uint32(36+len(pcm)) {
		t.Fatalf("bad RIFF size: %d", got)
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
		t.Fatalf("bad channel count: %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 8000 {
		t.Fatalf("bad sample rate: %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[28:32]); got != 16000 {
		t.Fatalf("bad byte rate: %d", got)
	}
	if got := binary.LittleEndian.Uint16(wav[34:36]); got != 16 {
		t.Fatalf("bad bits per sample: %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Fatalf("bad data size: %d", got)
	}
}

func TestPCMToWavRejectsBadInput(t *testing.T) {
	if _, err := PCMToWav(nil, 1, 8000); err == nil {
		t.Fatal("empty PCM must error")
	}
	if _, err := PCMToWav(make([]byte, 4), 3, 8000); err == nil {
		t.Fatal("3 channels must error")
	}
	if _, err := PCMToWav(make([]byte, 4), 1, 0); err == nil {
		t.Fatal("zero sample rate must error")
	}
	if _, err := PCMToWav(make([]byte, 3), 1, 8000); err == nil {
		t.Fatal("odd byte count for 16-bit mono must error")
	}
}

func TestUlawToPCMDoublesLength(t *testing.T) {
	ulaw := []byte{0xFF, 0x7F, 0x00, 0x80}
	pcm, err := UlawToPCM(ulaw)
	if err != nil {
		t.Fatalf("UlawToPCM failed: %v", err)
	}
	if len(pcm) != 2*len(ulaw) {
		t.Fatalf("expected %d PCM bytes, got %d", 2*len(ulaw), len(pcm))
	}

	if _, err := UlawToPCM(nil); err == nil {
		t.Fatal("empty ulaw must error")
	}
}

func TestUlawToWav(t *testing.T) {
	ulaw := make([]byte, 160)
	wav, err := UlawToWav(ulaw, 0) // 0 falls back to telephony rate
	if err != nil {
		t.Fatalf("UlawToWav failed: %v", err)
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != DefaultTelephonySampleRate {
		t.Fatalf("expected telephony sample rate, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(2*len(ulaw)) {
		t.Fatalf("bad data size: %d", got)
	}
}

func TestIsTelephonyContentType(t *testing.T) {
	for _, ct := range []string{"audio/basic", "audio/PCMU", "audio/pcmu"} {
		if !IsTelephonyContentType(ct) {
			t.Fatalf("%q should be telephony", ct)
		}
	}
	for _, ct := range []string{"audio/wav", "audio/webm", "", "application/json"} {
		if IsTelephonyContentType(ct) {
			t.Fatalf("%q should not be telephony", ct)
		}
	}
}
