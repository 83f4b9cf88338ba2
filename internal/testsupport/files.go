package testsupport

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// WriteAudioFile writes a 16 kHz mono 16-bit PCM WAV file holding dataBytes
// of silence. A dataBytes <= 0 writes a header-only file.
func WriteAudioFile(t testing.TB, path string, dataBytes int64) {
	t.Helper()

	if dataBytes < 0 {
		dataBytes = 0
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	const (
		sampleRate    = 16000
		channels      = 1
		bitsPerSample = 16
	)
	header := struct {
		ChunkID       [4]byte
		ChunkSize     uint32
		Format        [4]byte
		FmtID         [4]byte
		FmtSize       uint32
		AudioFormat   uint16
		Channels      uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
		DataID        [4]byte
		DataSize      uint32
	}{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(36 + dataBytes),
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		FmtID:         [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1,
		Channels:      channels,
		SampleRate:    sampleRate,
		ByteRate:      sampleRate * channels * bitsPerSample / 8,
		BlockAlign:    channels * bitsPerSample / 8,
		BitsPerSample: bitsPerSample,
		DataID:        [4]byte{'d', 'a', 't', 'a'},
		DataSize:      uint32(dataBytes),
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, header); err != nil {
		t.Fatalf("write header %s: %v", path, err)
	}
	if err := f.Truncate(44 + dataBytes); err != nil {
		t.Fatalf("extend %s: %v", path, err)
	}
}
