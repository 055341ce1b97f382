package errs

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalid        = errors.New("invalid")
	ErrConflict       = errors.New("conflict")
	ErrTooMany        = errors.New("too many requests")
	ErrInternal       = errors.New("internal")
	ErrIndexNotLoaded = errors.New("vector index not loaded")
	ErrIndexEmpty     = errors.New("chunk set is empty")
	ErrRebuildRunning = errors.New("index rebuild already running")
	ErrUnsupportedDoc = errors.New("unsupported document format")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}
