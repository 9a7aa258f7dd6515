// Copyright 2016 Aleksandr Demakin. All rights reserved.

package common

import (
	"os"
	"syscall"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestUninterruptedSyscall(t *testing.T) {
	a := assert.New(t)
	calls := 0
	err := UninterruptedSyscall(func() error {
		calls++
		if calls < 3 {
			return os.NewSyscallError("SEMOP", syscall.EINTR)
		}
		return nil
	})
	a.NoError(err)
	a.Equal(3, calls)
	calls = 0
	err = UninterruptedSyscall(func() error {
		calls++
		return os.NewSyscallError("SEMOP", syscall.EINVAL)
	})
	a.Error(err)
	a.Equal(1, calls)
}

func TestSyscallErrHasCode(t *testing.T) {
	a := assert.New(t)
	err := errors.Wrap(os.NewSyscallError("SEMCTL", syscall.EPERM), "semctl failed")
	a.True(SyscallErrHasCode(err, syscall.EPERM))
	a.False(SyscallErrHasCode(err, syscall.EINTR))
	a.False(SyscallErrHasCode(errors.New("plain"), syscall.EPERM))
}

func TestExistenceHelpers(t *testing.T) {
	a := assert.New(t)
	notExist := errors.Wrap(&os.PathError{Op: "SEMGET", Err: syscall.ENOENT}, "failed to open")
	exist := errors.Wrap(&os.PathError{Op: "SHMGET", Err: syscall.EEXIST}, "failed to create")
	a.True(IsNotExist(notExist))
	a.False(IsExist(notExist))
	a.True(IsExist(exist))
	a.False(IsNotExist(exist))
}
