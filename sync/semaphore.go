// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package sync provides System V semaphore sets, which can be shared
// between unrelated processes through a well-known key.
package sync

import (
	"os"

	"github.com/nxgtw/shmxfer/internal/common"
)

// Op is a single semaphore operation. A set of Ops passed to
// Semaphore.Do is performed atomically: either all of them, or none.
//	Num - index of the semaphore in the set.
//	Delta - value to add. Negative values block while the result would
//		be negative, zero waits for the semaphore to become zero.
//	NoWait - fail with ErrWouldBlock instead of blocking.
type Op struct {
	Num    uint16
	Delta  int16
	NoWait bool
}

// Semaphore is a System V semaphore set, identified by a key.
// Operations without an explicit index work on the first semaphore of the set.
type Semaphore semaphore

// CreateSemaphore creates a new semaphore set with nsems semaphores.
// All semaphores start with value 0.
// If an object with the same key exists, it returns an error,
// for which os.IsExist (applied to errors.Cause) is true.
//	key - object key.
//	nsems - number of semaphores in the set.
//	perm - object's permission bits.
func CreateSemaphore(key common.Key, nsems int, perm os.FileMode) (*Semaphore, error) {
	result, err := newSemaphore(key, nsems, perm, true)
	if err != nil {
		return nil, err
	}
	return (*Semaphore)(result), nil
}

// OpenSemaphore opens an existing semaphore set.
// If there is no such object, it returns an error,
// for which os.IsNotExist (applied to errors.Cause) is true.
func OpenSemaphore(key common.Key) (*Semaphore, error) {
	result, err := newSemaphore(key, 0, 0, false)
	if err != nil {
		return nil, err
	}
	return (*Semaphore)(result), nil
}

// Key returns the key the semaphore was created or opened with.
func (s *Semaphore) Key() common.Key {
	return s.key
}

// Do performs the given operations atomically.
// It blocks, if the operations cannot be done immediately.
func (s *Semaphore) Do(ops ...Op) error {
	return (*semaphore)(s).do(ops)
}

// Signal increments the value of the first semaphore by 1, waking waiting process (if any).
func (s *Semaphore) Signal() error {
	return s.Do(Op{Delta: 1})
}

// Wait decrements the value of the first semaphore by 1, and blocks if the value becomes negative.
func (s *Semaphore) Wait() error {
	return s.Do(Op{Delta: -1})
}

// TryWait decrements the value of the first semaphore by 1, if it is possible
// without blocking. It returns false, if the value was 0.
func (s *Semaphore) TryWait() (bool, error) {
	err := s.Do(Op{Delta: -1, NoWait: true})
	if err == ErrWouldBlock {
		return false, nil
	}
	return err == nil, err
}

// Value returns the current value of the semaphore with the given index.
func (s *Semaphore) Value(num int) (int, error) {
	return (*semaphore)(s).ctl(num, common.SemGetVal)
}

// Waiters returns the number of processes waiting for the value
// of the semaphore with the given index to increase.
func (s *Semaphore) Waiters(num int) (int, error) {
	return (*semaphore)(s).ctl(num, common.SemGetNcnt)
}

// Close is a no-op, sysV semaphores do not hold per-process resources.
func (s *Semaphore) Close() error {
	return nil
}

// Destroy removes the semaphore set permanently.
// Processes blocked on it are woken with EIDRM.
func (s *Semaphore) Destroy() error {
	return removeSysVSemaByID(s.id)
}

// DestroySemaphore permanently removes the semaphore set with the given key.
// Unlike Destroy, it reports a missing object: the returned error
// satisfies os.IsNotExist after errors.Cause.
func DestroySemaphore(key common.Key) error {
	return destroySemaphore(key)
}
