package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// World routing/state.
	ErrWorldBusy = "E_WORLD_BUSY"
	ErrWrongMode = "E_WRONG_MODE"

	// Command layer.
	ErrBadRequest = "E_BAD_REQUEST"
	ErrInternal   = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrWorldBusy:       {},
	ErrWrongMode:       {},
	ErrBadRequest:      {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

func NewError(code, message string) ErrorMsg {
	return ErrorMsg{
		Type:            TypeError,
		ProtocolVersion: Version,
		Code:            code,
		Message:         message,
	}
}
