package signature

import "fmt"

// Kind classifies resolution failures.
type Kind int

const (
	// PlayerScriptUnavailable: the player script could not be located or fetched.
	PlayerScriptUnavailable Kind = iota + 1
	// TransformNotFound: the script no longer matches the known transform shape.
	TransformNotFound
	// CipherMalformed: the signatureCipher lacks url or s.
	CipherMalformed
)

func (k Kind) String() string {
	switch k {
	case PlayerScriptUnavailable:
		return "player script unavailable"
	case TransformNotFound:
		return "signature transform not found"
	case CipherMalformed:
		return "malformed signature cipher"
	default:
		return "unknown"
	}
}

// Error is returned by every resolution failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
