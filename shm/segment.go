// Copyright 2015 Aleksandr Demakin. All rights reserved.

// Package shm implements System V shared memory segments,
// identified by integer keys and visible system-wide.
package shm

import (
	"os"

	"github.com/nxgtw/shmxfer/internal/common"
)

// this is to ensure, that the segment satisfies the minimal
// interface of shared memory objects
var (
	_ iSharedMemorySegment = (*Segment)(nil)
)

type iSharedMemorySegment interface {
	Data() []byte
	Size() int
	Close() error
	Destroy() error
}

// Segment is a System V shared memory segment, attached to the process' address space.
type Segment struct {
	*segment
}

// CreateSegment creates a new segment of the given size and attaches it.
// If an object with the same key exists, it returns an error,
// for which os.IsExist (applied to errors.Cause) is true.
//	key - object key.
//	size - segment size in bytes.
//	perm - object's permission bits.
func CreateSegment(key common.Key, size int, perm os.FileMode) (*Segment, error) {
	impl, err := newSegment(key, size, perm, true)
	if err != nil {
		return nil, err
	}
	return &Segment{impl}, nil
}

// OpenSegment attaches an existing segment. Its size is the size it was created with.
// If there is no such object, it returns an error,
// for which os.IsNotExist (applied to errors.Cause) is true.
func OpenSegment(key common.Key) (*Segment, error) {
	impl, err := newSegment(key, 0, 0, false)
	if err != nil {
		return nil, err
	}
	return &Segment{impl}, nil
}

// DestroySegment permanently removes the segment with the given key.
// Attached mappings stay valid until they are detached.
// A missing segment is reported with an error, which satisfies
// os.IsNotExist after errors.Cause.
func DestroySegment(key common.Key) error {
	return destroySegment(key)
}
