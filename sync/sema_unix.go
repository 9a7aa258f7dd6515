// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build linux && (386 || amd64 || arm64)
// +build linux
// +build 386 amd64 arm64

package sync

import (
	"os"
	"syscall"

	"github.com/nxgtw/shmxfer/internal/common"
	"github.com/pkg/errors"
)

// ErrWouldBlock is returned by a non-blocking operation, which could not be done immediately.
var ErrWouldBlock = errors.New("semaphore operation would block")

type sembuf struct {
	semnum uint16
	semop  int16
	semflg int16
}

// semaphore is a sysV semaphore set.
type semaphore struct {
	key common.Key
	id  int
}

func newSemaphore(key common.Key, nsems int, perm os.FileMode, create bool) (*semaphore, error) {
	flags := int(perm.Perm())
	if create {
		if nsems <= 0 {
			return nil, errors.Errorf("invalid number of semaphores %d", nsems)
		}
		flags |= common.IpcCreate | common.IpcExcl
	}
	id, err := semget(key, nsems, flags)
	if err != nil {
		if create {
			return nil, errors.Wrap(err, "failed to create sysv semaphore")
		}
		return nil, errors.Wrap(err, "failed to open sysv semaphore")
	}
	return &semaphore{key: key, id: id}, nil
}

func (s *semaphore) do(ops []Op) error {
	if len(ops) == 0 {
		return nil
	}
	bufs := make([]sembuf, len(ops))
	for i, op := range ops {
		bufs[i] = sembuf{semnum: op.Num, semop: op.Delta}
		if op.NoWait {
			bufs[i].semflg = common.IpcNoWait
		}
	}
	err := common.UninterruptedSyscall(func() error { return semop(s.id, bufs) })
	if err == nil {
		return nil
	}
	if common.SyscallErrHasCode(err, syscall.EAGAIN) {
		return ErrWouldBlock
	}
	return errors.Wrap(err, "semop failed")
}

func (s *semaphore) ctl(num, cmd int) (int, error) {
	result, err := semctl(s.id, num, cmd)
	if err != nil {
		return 0, errors.Wrap(err, "semctl failed")
	}
	return result, nil
}

func destroySemaphore(key common.Key) error {
	id, err := semget(key, 0, 0)
	if err != nil {
		return errors.Wrap(err, "failed to get semaphore id")
	}
	return removeSysVSemaByID(id)
}

func removeSysVSemaByID(id int) error {
	_, err := semctl(id, 0, common.IpcRmid)
	if err == nil {
		return nil
	}
	// the set has been removed since we got its id.
	if common.SyscallErrHasCode(err, syscall.EINVAL) || common.SyscallErrHasCode(err, syscall.EIDRM) {
		return errors.Wrap(&os.PathError{Op: "SEMCTL", Path: "", Err: syscall.ENOENT}, "semaphore is already removed")
	}
	return errors.Wrap(err, "semctl failed")
}
