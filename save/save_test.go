package save

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// buildSave constructs a raw (obfuscated) save buffer that starts with the
// raw magic, with the counter signature placed at sigOffset and the
// little-endian counter value v immediately following it.
func buildSave(size, sigOffset int, v uint32) []byte {
	decoded := make([]byte, size)
	for i := range decoded {
		decoded[i] = 0xAB // filler
	}
	copy(decoded[sigOffset:], counterSignature)
	valOff := sigOffset + len(counterSignature)
	decoded[valOff+0] = byte(v)
	decoded[valOff+1] = byte(v >> 8)
	decoded[valOff+2] = byte(v >> 16)
	decoded[valOff+3] = byte(v >> 24)

	raw := make([]byte, size)
	for i, b := range decoded {
		raw[i] = ^b
	}
	copy(raw[:4], magic[:])
	return raw
}

func TestDecodeBytes_DecodesLargeCounterValue(t *testing.T) {
	raw := buildSave(256, 100, 0xFFFF3CB1)
	got, err := DecodeBytes(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0xFFFF3CB1 {
		t.Fatalf("got %d, want %d", got, uint32(0xFFFF3CB1))
	}
}

func TestDecodeBytes_DecodesTypicalCounterValue(t *testing.T) {
	raw := buildSave(256, 100, 50000)
	got, err := DecodeBytes(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 50000 {
		t.Fatalf("got %d, want 50000", got)
	}
}

func TestDecodeBytes_NotASave(t *testing.T) {
	raw := make([]byte, 64)
	raw[0] = 0x00
	_, err := DecodeBytes(raw)
	if !errors.Is(err, &Error{Kind: NotASave}) {
		t.Fatalf("expected NotASave, got %v", err)
	}
}

func TestDecodeBytes_CounterNotFound(t *testing.T) {
	decoded := make([]byte, 64)
	raw := make([]byte, len(decoded))
	for i, b := range decoded {
		raw[i] = ^b
	}
	copy(raw[:4], magic[:])
	_, err := DecodeBytes(raw)
	if !errors.Is(err, &Error{Kind: CounterNotFound}) {
		t.Fatalf("expected CounterNotFound, got %v", err)
	}
}

func TestDecodeBytes_FirstMatchWins(t *testing.T) {
	decoded := make([]byte, 128)
	for i := range decoded {
		decoded[i] = 0xAB
	}
	copy(decoded[10:], counterSignature)
	copy(decoded[10+len(counterSignature):], []byte{7, 0, 0, 0}) // first match -> value 7

	copy(decoded[60:], counterSignature)
	copy(decoded[60+len(counterSignature):], []byte{99, 0, 0, 0}) // second match -> value 99, should be ignored

	raw := make([]byte, len(decoded))
	for i, b := range decoded {
		raw[i] = ^b
	}
	copy(raw[:4], magic[:])

	got, err := DecodeBytes(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Fatalf("got %d, want 7 (first match)", got)
	}
}

func TestDecodeBytes_Idempotent(t *testing.T) {
	raw := buildSave(200, 50, 12345)
	v1, err1 := DecodeBytes(raw)
	v2, err2 := DecodeBytes(raw)
	if err1 != err2 || v1 != v2 {
		t.Fatalf("decode is not deterministic: (%v, %v) vs (%v, %v)", v1, err1, v2, err2)
	}
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slot1.save")
	raw := buildSave(256, 80, 42)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	got, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}
