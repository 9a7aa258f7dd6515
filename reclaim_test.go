// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmxfer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReclaimIdempotence(t *testing.T) {
	a := assert.New(t)
	cfg := testConfig(t)
	buff := bytes.NewBuffer(nil)
	cfg.Logger = NewLogger(RoleReclaimer, true, buff)
	r, err := NewReader(cfg)
	require.NoError(t, err)
	// the reader is abandoned as if it has crashed.
	a.NoError(r.Close())

	first := Reclaim(cfg)
	if a.Len(first, 4) {
		a.Equal(ObjectSemaphore, first[0].Object)
		a.Equal(cfg.ContentKey, first[0].Key)
		a.Equal(ObjectSharedMemory, first[1].Object)
		a.Equal(cfg.ContentKey, first[1].Key)
		a.Equal(ObjectSemaphore, first[2].Object)
		a.Equal(cfg.SizeKey, first[2].Key)
		a.Equal(ObjectSharedMemory, first[3].Object)
		a.Equal(cfg.SizeKey, first[3].Key)
	}
	for _, res := range first {
		a.True(res.Removed, res.String())
		a.NoError(res.Err)
	}
	a.NoError(ReclaimFailed(first))
	a.Contains(buff.String(), "Removed the semaphore with key")

	second := Reclaim(cfg)
	a.Len(second, 4)
	for _, res := range second {
		a.False(res.Removed, res.String())
		a.NoError(res.Err)
	}
	a.NoError(ReclaimFailed(second))
	a.Contains(buff.String(), "doesn't exist")

	// a new reader can start after the cleanup.
	r, err = NewReader(cfg)
	if a.NoError(err) {
		a.NoError(r.Destroy())
	}
}

func TestReclaimResultString(t *testing.T) {
	a := assert.New(t)
	a.Equal(`Removed the semaphore with key "42".`,
		ReclaimResult{Object: ObjectSemaphore, Key: 42, Removed: true}.String())
	a.Equal(`The shared memory with key "44" doesn't exist.`,
		ReclaimResult{Object: ObjectSharedMemory, Key: 44}.String())
}
