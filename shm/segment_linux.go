// Copyright 2015 Aleksandr Demakin. All rights reserved.

//go:build linux
// +build linux

package shm

import (
	"os"
	"syscall"

	"github.com/nxgtw/shmxfer/internal/common"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

type segment struct {
	key  common.Key
	id   int
	data []byte
}

func newSegment(key common.Key, size int, perm os.FileMode, create bool) (*segment, error) {
	flags := int(perm.Perm())
	if create {
		if size <= 0 {
			return nil, errors.Errorf("invalid segment size %d", size)
		}
		flags |= unix.IPC_CREAT | unix.IPC_EXCL
	}
	id, err := shmget(key, size, flags)
	if err != nil {
		if create {
			return nil, errors.Wrap(err, "failed to create sysv shared memory")
		}
		return nil, errors.Wrap(err, "failed to open sysv shared memory")
	}
	data, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		if create {
			unix.SysvShmCtl(id, unix.IPC_RMID, nil)
		}
		return nil, errors.Wrap(os.NewSyscallError("SHMAT", err), "failed to attach sysv shared memory")
	}
	return &segment{key: key, id: id, data: data}, nil
}

// Key returns the key of the segment.
func (s *segment) Key() common.Key {
	return s.key
}

// Data returns the attached memory. It is nil after Close.
func (s *segment) Data() []byte {
	return s.data
}

// Size returns the size of the attached memory.
func (s *segment) Size() int {
	return len(s.data)
}

// Close detaches the segment. The segment itself stays in the system.
func (s *segment) Close() error {
	if s.data == nil {
		return nil
	}
	err := unix.SysvShmDetach(s.data)
	s.data = nil
	if err != nil {
		return errors.Wrap(os.NewSyscallError("SHMDT", err), "failed to detach sysv shared memory")
	}
	return nil
}

// Destroy marks the segment for removal and detaches it.
func (s *segment) Destroy() error {
	rmErr := removeSegmentByID(s.id)
	if err := s.Close(); err != nil {
		return err
	}
	return rmErr
}

func destroySegment(key common.Key) error {
	id, err := shmget(key, 0, 0)
	if err != nil {
		return errors.Wrap(err, "failed to get shared memory id")
	}
	return removeSegmentByID(id)
}

func removeSegmentByID(id int) error {
	if _, err := unix.SysvShmCtl(id, unix.IPC_RMID, nil); err != nil {
		if err == unix.EINVAL || err == unix.EIDRM {
			return errors.Wrap(&os.PathError{Op: "SHMCTL", Path: "", Err: syscall.ENOENT}, "shared memory is already removed")
		}
		return errors.Wrap(os.NewSyscallError("SHMCTL", err), "shmctl failed")
	}
	return nil
}

func shmget(k common.Key, size, flags int) (int, error) {
	id, err := unix.SysvShmGet(int(k), size, flags)
	if err != nil {
		if err == unix.EEXIST || err == unix.ENOENT {
			return 0, &os.PathError{Op: "SHMGET", Path: "", Err: err}
		}
		return 0, os.NewSyscallError("SHMGET", err)
	}
	return id, nil
}
