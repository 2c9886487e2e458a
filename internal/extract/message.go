package extract

import (
	"errors"
	"fmt"

	"ytresolve/internal/playability"
)

// UserMessage renders err for display. Cancellation renders as the empty
// string since the user asked for it.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var f *Failure
	if !errors.As(err, &f) {
		return fmt.Sprintf("Unexpected error: %v", err)
	}

	switch f.Kind.Category() {
	case CategoryCancelled:
		return ""
	case CategoryInvalidRequest:
		return fmt.Sprintf("Invalid request: %v", f.Err)
	case CategoryTransport:
		switch f.Kind {
		case Timeout:
			return "The request timed out. Try again."
		case HTTPStatus:
			return fmt.Sprintf("The platform answered with HTTP %d. Try again later.", f.StatusCode)
		default:
			return "Network unavailable. Check your connection and try again."
		}
	case CategoryDecode:
		return "The platform sent a response this version cannot read."
	case CategoryBlocked:
		return blockedMessage(f)
	case CategoryNoSuitableFormat:
		return "No compatible stream within the requested limits."
	case CategoryResolve:
		return fmt.Sprintf("Could not unlock the stream (%s). The extractor may need an update.", f.Kind)
	default:
		return fmt.Sprintf("Unexpected error: %v", err)
	}
}

func blockedMessage(f *Failure) string {
	var detail string
	switch f.Kind {
	case LoginRequired:
		detail = "sign-in required"
	case Unplayable:
		detail = "not playable here"
	case LiveOffline:
		detail = "live stream is offline"
	case PlatformError:
		detail = "rejected by the platform"
	case InconsistentOK:
		return "Video reported playable but no streams were returned."
	case UnknownStatus:
		detail = "unrecognized status"
	}
	msg := "Video unavailable: " + detail
	if reason := blockedReason(f.Err); reason != "" {
		msg += " (" + reason + ")"
	}
	return msg
}

func blockedReason(err error) string {
	var b *playability.Blocked
	if errors.As(err, &b) {
		if b.Reason == playability.UnknownStatus {
			return b.Status
		}
		return b.Message
	}
	return ""
}
