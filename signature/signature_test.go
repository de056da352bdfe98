package signature

import "testing"

func TestFindAll_Overlapping(t *testing.T) {
	offsets := FindAll([]byte{0xAA, 0xAA, 0xAA}, []byte{0xAA, 0xAA})
	if len(offsets) != 2 || offsets[0] != 0 || offsets[1] != 1 {
		t.Fatalf("got %v, want [0 1]", offsets)
	}
}

func TestFindAll_NoMatch(t *testing.T) {
	offsets := FindAll([]byte{1, 2, 3}, []byte{4, 5})
	if len(offsets) != 0 {
		t.Fatalf("got %v, want none", offsets)
	}
}

func TestFindAll_NeedleLongerThanHaystack(t *testing.T) {
	offsets := FindAll([]byte{1}, []byte{1, 2})
	if len(offsets) != 0 {
		t.Fatalf("got %v, want none", offsets)
	}
}
