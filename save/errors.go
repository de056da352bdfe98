package save

import "fmt"

// Kind identifies the category of a save decoding failure.
type Kind int

const (
	// NotASave means the file's first four bytes don't match the save magic.
	NotASave Kind = iota
	// CounterNotFound means the decoded buffer has no counter signature.
	CounterNotFound
)

func (k Kind) String() string {
	switch k {
	case NotASave:
		return "not a save file"
	case CounterNotFound:
		return "counter signature not found"
	default:
		return "unknown save error"
	}
}

// Error is the structured error type returned by the decoder.
type Error struct {
	Kind Kind
	Path string
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Kind)
	}
	return e.Kind.String()
}

// Is lets callers compare against a bare Kind-tagged sentinel via errors.Is,
// e.g. errors.Is(err, &save.Error{Kind: save.NotASave}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}
