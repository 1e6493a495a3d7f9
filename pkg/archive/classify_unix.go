//go:build unix

package archive

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Unix has no mandatory sharing modes; the closest equivalents are a
// busy device or text file and a mandatory-lock EAGAIN.
func platformSharingViolation(err error) bool {
	return errors.Is(err, unix.EBUSY) ||
		errors.Is(err, unix.ETXTBSY) ||
		errors.Is(err, unix.EAGAIN)
}

func platformOutOfMemory(err error) bool {
	return errors.Is(err, unix.ENOMEM)
}
