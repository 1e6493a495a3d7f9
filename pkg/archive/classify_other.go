//go:build !unix && !windows

package archive

func platformSharingViolation(error) bool { return false }

func platformOutOfMemory(error) bool { return false }
