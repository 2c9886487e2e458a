// Package playability gates a decoded player document on the platform's
// reported status.
package playability

import (
	"fmt"

	"ytresolve/internal/response"
)

// Reason classifies why a video cannot be streamed.
type Reason int

const (
	LoginRequired Reason = iota + 1
	Unplayable
	LiveOffline
	PlatformError
	InconsistentOK
	UnknownStatus
)

func (r Reason) String() string {
	switch r {
	case LoginRequired:
		return "login-required"
	case Unplayable:
		return "unplayable"
	case LiveOffline:
		return "live-offline"
	case PlatformError:
		return "platform-error"
	case InconsistentOK:
		return "inconsistent-ok"
	case UnknownStatus:
		return "unknown-status"
	default:
		return "unknown"
	}
}

// Blocked is returned when the document does not permit playback.
type Blocked struct {
	Reason  Reason
	Status  string // raw playabilityStatus.status
	Message string // platform-supplied explanation, may be empty
}

func (b *Blocked) Error() string {
	label := b.Reason.String()
	if b.Reason == UnknownStatus {
		label = "unknown-status:" + b.Status
	}
	if b.Message != "" {
		return fmt.Sprintf("video blocked (%s): %s", label, b.Message)
	}
	return fmt.Sprintf("video blocked (%s)", label)
}

var statusReasons = map[string]Reason{
	response.StatusLoginRequired:     LoginRequired,
	response.StatusUnplayable:        Unplayable,
	response.StatusLiveStreamOffline: LiveOffline,
	response.StatusError:             PlatformError,
}

// Evaluate returns the streaming data when the video is playable and a
// *Blocked error otherwise. Streaming data attached to a non-OK status is
// never returned.
func Evaluate(pr *response.PlayerResponse) (*response.StreamingData, error) {
	ps := pr.PlayabilityStatus
	message := ps.Reason
	if message == "" && len(ps.Messages) > 0 {
		message = ps.Messages[0]
	}

	if ps.Status == response.StatusOK {
		if pr.StreamingData.Empty() {
			return nil, &Blocked{Reason: InconsistentOK, Status: ps.Status, Message: "status OK without streaming formats"}
		}
		return pr.StreamingData, nil
	}

	reason, ok := statusReasons[ps.Status]
	if !ok {
		reason = UnknownStatus
	}
	return nil, &Blocked{Reason: reason, Status: ps.Status, Message: message}
}
