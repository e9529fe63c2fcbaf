package images

import "errors"

var (
	ErrInvalidType     = errors.New("invalid file type")
	ErrTooLarge        = errors.New("file too large")
	ErrTooManyFiles    = errors.New("too many files")
	ErrUnauthenticated = errors.New("owner identity required")
	ErrUnauthorized    = errors.New("object not owned by caller")
)
