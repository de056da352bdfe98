package locator

import "errors"

// state is the cached locator's Cold/Warm state: Cold means the last known
// address is untrusted and the next Poll must do a full scan; Warm means a
// cached address has been validated and a fast single-read poll is tried
// first.
type state int

const (
	cold state = iota
	warm
)

// Locator attaches to a single target process and recovers its live grub
// counter. A Locator owns its ProcessHandle exclusively: Poll must not be
// called concurrently on the same Locator, and the handle is released on
// Close or on any error that makes it unusable.
type Locator struct {
	b       backend
	Observe ObserveFunc

	// MaxPlausibleValue, when non-zero, discards any candidate whose value
	// exceeds it before the locality/value selection rule runs. This is an
	// optional, off-by-default filter: the selector's contract is to pick
	// the largest surviving value, so enabling a ceiling is a caller
	// decision, never a default.
	MaxPlausibleValue uint32

	st      state
	addr    Addr32
	lastVal uint32
}

// New creates a Locator for the host platform. Attach must be called before
// Poll.
func New() *Locator {
	return &Locator{b: newBackend()}
}

// Attach opens a read-only handle to the named process. It fails with
// ProcessNotRunning if no process with that image name exists, AccessDenied
// if the OS refuses the open, or UnsupportedTarget if the process is not a
// 32-bit build.
func (l *Locator) Attach(processName string) error {
	return l.b.attach(processName)
}

// Close releases the underlying OS resources. Safe to call more than once.
func (l *Locator) Close() error {
	l.st = cold
	l.addr = 0
	l.lastVal = 0
	return l.b.detach()
}

// Poll returns the current counter value. In the Cold state it performs a
// full scan; in the Warm state it attempts the cached fast-path read first
// and only falls back to a full scan when the cache is invalidated.
func (l *Locator) Poll() (uint32, error) {
	if l.st == warm && l.lastVal != 0 {
		v, err := l.readCached()
		if err == nil && !l.jumpedOrDecreased(v) {
			l.lastVal = v
			return v, nil
		}
		// read failed, or the value decreased / jumped by more than one:
		// drop the cache and fall through to a full scan.
		l.st = cold
		l.addr = 0
	} else if l.st == warm {
		// lastVal == 0: a dead node also reads zero, so a zero cache can't
		// be trusted without re-validating from scratch.
		l.st = cold
		l.addr = 0
	}

	return l.fullScan()
}

func (l *Locator) readCached() (uint32, error) {
	buf, err := l.b.read(Addr32(uint32(l.addr)+ValueOffset), 4)
	if err != nil {
		return 0, err
	}
	return readUint32LE(buf), nil
}

func (l *Locator) jumpedOrDecreased(v uint32) bool {
	return v < l.lastVal || v > l.lastVal+1
}

func (l *Locator) fullScan() (uint32, error) {
	candidates, err := scan(l.b, l.Observe)
	if err != nil {
		if errors.Is(err, &Error{Kind: ProcessNotRunning}) {
			// The process is gone, so the handle is no longer usable.
			l.Close()
		}
		return 0, err
	}

	if l.MaxPlausibleValue != 0 {
		candidates = filterByMaxValue(candidates, l.MaxPlausibleValue)
	}

	winner, ok := Select(candidates)
	if !ok {
		return 0, &Error{Kind: CounterNotFound}
	}

	l.st = warm
	l.addr = winner.Address
	l.lastVal = winner.Value
	return winner.Value, nil
}
