package archive

import (
	"bytes"
	"errors"
)

var (
	// ErrSharingViolation marks an open that failed because another
	// process holds the file. Custom Openers return it (possibly wrapped)
	// to request the retry path; platform lock errors are recognised too.
	ErrSharingViolation = errors.New("sharing violation")

	// ErrOutOfMemory marks an allocation failure reported by a file or
	// compression primitive. It is never retried.
	ErrOutOfMemory = errors.New("out of memory")

	// errBufferLimit is returned when a payload outgrows MaxBufferBytes.
	errBufferLimit = errors.New("payload exceeds in-memory buffer limit")
)

func isSharingViolation(err error) bool {
	return errors.Is(err, ErrSharingViolation) || platformSharingViolation(err)
}

func isOutOfMemory(err error) bool {
	return errors.Is(err, ErrOutOfMemory) ||
		errors.Is(err, errBufferLimit) ||
		errors.Is(err, bytes.ErrTooLarge) ||
		platformOutOfMemory(err)
}
