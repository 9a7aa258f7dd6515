// Copyright 2016 Aleksandr Demakin. All rights reserved.

package common

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
)

// UninterruptedSyscall runs the given func until it returns an error,
// which is not EINTR.
func UninterruptedSyscall(f func() error) error {
	for {
		err := f()
		if !IsInterruptedSyscallErr(err) {
			return err
		}
	}
}

// IsInterruptedSyscallErr returns true, if the error is EINTR.
func IsInterruptedSyscallErr(err error) bool {
	return SyscallErrHasCode(err, syscall.EINTR)
}

// SyscallErrHasCode checks whether the error is an *os.SyscallError
// (possibly wrapped), which holds the given errno.
func SyscallErrHasCode(err error, code syscall.Errno) bool {
	if sysErr, ok := errors.Cause(err).(*os.SyscallError); ok {
		if errno, ok := sysErr.Err.(syscall.Errno); ok {
			return errno == code
		}
	}
	return false
}

// IsNotExist is os.IsNotExist for errors wrapped with github.com/pkg/errors.
func IsNotExist(err error) bool {
	return os.IsNotExist(errors.Cause(err))
}

// IsExist is os.IsExist for errors wrapped with github.com/pkg/errors.
func IsExist(err error) bool {
	return os.IsExist(errors.Cause(err))
}
