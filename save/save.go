// Package save decodes Tales of Monkey Island 103 save files and extracts
// the nGrubsCollected counter. Every file is a single whole-file obfuscated
// container; decoding is pure and has no side effects.
package save

import (
	"os"

	"github.com/galygious/grubwatch/signature"
)

// magic is the first four bytes of a valid save file as stored on disk,
// checked before the XOR-0xFF decoding is applied.
var magic = [4]byte{0xAA, 0xDE, 0xAF, 0x64}

// counterSignature locates the counter inside the decoded buffer. The u32
// counter immediately follows the last byte of the signature.
var counterSignature = []byte{
	0x02, 0x00, 0x00, 0x00,
	0xA1, 0x5A, 0x21, 0x97, 0x53, 0xC0, 0x0E, 0x51,
	0x00, 0x00, 0x00, 0x00,
}

// DecodeFile reads path and extracts the grub counter.
func DecodeFile(path string) (uint32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return DecodeBytes(raw)
}

// DecodeBytes extracts the grub counter from the raw (still obfuscated)
// bytes of a save file. It is pure and deterministic: the same input always
// produces the same result or the same error.
func DecodeBytes(raw []byte) (uint32, error) {
	if len(raw) < 4 || raw[0] != magic[0] || raw[1] != magic[1] || raw[2] != magic[2] || raw[3] != magic[3] {
		return 0, &Error{Kind: NotASave}
	}

	decoded := unobfuscate(raw)

	offsets := signature.FindAll(decoded, counterSignature)
	if len(offsets) == 0 {
		return 0, &Error{Kind: CounterNotFound}
	}

	valueOffset := offsets[0] + len(counterSignature)
	if valueOffset+4 > len(decoded) {
		return 0, &Error{Kind: CounterNotFound}
	}

	return readUint32LE(decoded[valueOffset : valueOffset+4]), nil
}

// unobfuscate reverses the whole-file XOR-0xFF obfuscation applied to save
// files. It never mutates raw.
func unobfuscate(raw []byte) []byte {
	decoded := make([]byte, len(raw))
	for i, b := range raw {
		decoded[i] = ^b
	}
	return decoded
}

func readUint32LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
