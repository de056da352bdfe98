package locator

import (
	"errors"
	"testing"
)

func TestLocator_CacheInvalidatesOnJumpOrDrop(t *testing.T) {
	b := newFakeBackend()
	base := Addr32(0x08000000)
	buf := make([]byte, 256)
	writeNode(buf, 0x40, 100, [3]uint32{uint32(base) + 0x40, uint32(base) + 0x41, uint32(base) + 0x42})
	b.addRegion(base, buf)

	l := &Locator{b: b}

	setValue := func(v uint32) {
		putUint32LE(buf, 0x40+ValueOffset, v)
	}

	trajectory := []uint32{100, 101, 102, 50, 51, 60}
	var scanCountBefore int
	scanCalls := 0
	observe := func(CandidateNode) { scanCalls++ }
	l.Observe = observe

	for i, want := range trajectory {
		setValue(want)
		got, err := l.Poll()
		if err != nil {
			t.Fatalf("poll %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Fatalf("poll %d: got %d, want %d", i, got, want)
		}
		if i == 3 || i == 5 {
			// The value just dropped from 102 to 50 (i == 3) or jumped from
			// 51 to 60 (i == 5): this poll must have performed a full rescan
			// (observe fires once per candidate found during a scan, and our
			// fixture has exactly one).
			if scanCalls == scanCountBefore {
				t.Fatalf("poll %d: expected a full rescan after the value decreased or jumped", i)
			}
		}
		scanCountBefore = scanCalls
	}

	if l.st != warm {
		t.Fatalf("expected locator to end Warm, got state %v", l.st)
	}
}

func TestLocator_ColdStartsWithFullScan(t *testing.T) {
	b := newFakeBackend()
	base := Addr32(0x09000000)
	buf := make([]byte, 128)
	writeNode(buf, 0x20, 7, [3]uint32{uint32(base) + 0x20, uint32(base) + 0x21, uint32(base) + 0x22})
	b.addRegion(base, buf)

	l := &Locator{b: b}
	got, err := l.Poll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
	if l.st != warm {
		t.Fatalf("expected Warm after a successful scan")
	}
}

func TestLocator_WarmZeroAlwaysRescans(t *testing.T) {
	b := newFakeBackend()
	base := Addr32(0x0A000000)
	buf := make([]byte, 128)
	writeNode(buf, 0x20, 0, [3]uint32{uint32(base) + 0x20, uint32(base) + 0x21, uint32(base) + 0x22})
	b.addRegion(base, buf)

	l := &Locator{b: b}
	if _, err := l.Poll(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.lastVal != 0 {
		t.Fatalf("expected cached value 0")
	}

	// Even though the cached address is still valid and still reads 0, the
	// next poll must not trust the fast path: it should perform a full scan.
	scans := 0
	l.Observe = func(CandidateNode) { scans++ }
	if _, err := l.Poll(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scans == 0 {
		t.Fatalf("expected a full rescan when last cached value was 0")
	}
}

func TestLocator_ReadFailureInvalidatesCache(t *testing.T) {
	b := newFakeBackend()
	base := Addr32(0x0B000000)
	buf := make([]byte, 128)
	writeNode(buf, 0x20, 5, [3]uint32{uint32(base) + 0x20, uint32(base) + 0x21, uint32(base) + 0x22})
	b.addRegion(base, buf)

	l := &Locator{b: b}
	if _, err := l.Poll(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.st != warm {
		t.Fatalf("expected Warm after the first successful poll")
	}

	// Simulate the node having been freed: the cached fast-path read fails,
	// but the node is still discoverable by a full scan (e.g. it moved
	// within the same region). Poll must fall back to a full scan rather
	// than surface ReadFailed to the caller.
	b.failRead[base+0x20+ValueOffset] = true

	got, err := l.Poll()
	if err != nil {
		t.Fatalf("expected the fallback full scan to succeed, got error: %v", err)
	}
	if got != 5 {
		t.Fatalf("got %d, want 5 from the fallback scan", got)
	}
}

func TestLocator_ReadFailureWithNoSurvivorsReturnsCounterNotFound(t *testing.T) {
	b := newFakeBackend()
	base := Addr32(0x0C000000)
	buf := make([]byte, 128)
	writeNode(buf, 0x20, 5, [3]uint32{uint32(base) + 0x20, uint32(base) + 0x21, uint32(base) + 0x22})
	b.addRegion(base, buf)

	l := &Locator{b: b}
	if _, err := l.Poll(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The node vanished entirely: both the fast path and a full rescan fail
	// to find it (enumerateRegions now reports nothing).
	b.regions = nil
	b.failRead[base+0x20+ValueOffset] = true

	if _, err := l.Poll(); !errors.Is(err, &Error{Kind: CounterNotFound}) {
		t.Fatalf("expected CounterNotFound, got %v", err)
	}
}

func TestLocator_Poll_PropagatesProcessNotRunning(t *testing.T) {
	b := newFakeBackend()
	base := Addr32(0x0D000000)
	buf := make([]byte, 128)
	writeNode(buf, 0x20, 5, [3]uint32{uint32(base) + 0x20, uint32(base) + 0x21, uint32(base) + 0x22})
	b.addRegion(base, buf)

	l := &Locator{b: b}
	if _, err := l.Poll(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The game exits between polls: both the cached fast-path read and the
	// fallback full rescan it triggers must see the process gone, and Poll
	// must surface ProcessNotRunning rather than CounterNotFound so a
	// polling wrapper can wait for the process to reappear.
	b.gone = true

	_, err := l.Poll()
	if !errors.Is(err, &Error{Kind: ProcessNotRunning}) {
		t.Fatalf("expected ProcessNotRunning, got %v", err)
	}
}
