package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Placement layer.
	ErrConflict    = "E_CONFLICT"
	ErrOutOfBounds = "E_OUT_OF_BOUNDS"
	ErrInvalidKind = "E_INVALID_KIND"
	ErrNoFunds     = "E_NO_FUNDS"

	// Cancellation / lookups.
	ErrNotFound = "E_NOT_FOUND"
	ErrHasLabor = "E_HAS_LABOR"

	// Invariant violations surfaced defensively.
	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrConflict:        {},
	ErrOutOfBounds:     {},
	ErrInvalidKind:     {},
	ErrNoFunds:         {},
	ErrNotFound:        {},
	ErrHasLabor:        {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
