// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmxfer

import (
	"testing"

	"github.com/nxgtw/shmxfer/internal/common"
	"github.com/nxgtw/shmxfer/shm"
	"github.com/nxgtw/shmxfer/sync"

	"github.com/stretchr/testify/assert"
)

func TestChannelCreateAttach(t *testing.T) {
	a := assert.New(t)
	cfg := testConfig(t)
	_, err := AttachChannel(cfg.ContentKey)
	a.True(IsKind(err, ErrResourceNotFound))
	ch, err := CreateChannel(cfg.ContentKey, 64, DefaultPerm)
	if !a.NoError(err) {
		return
	}
	defer func() {
		a.NoError(ch.Destroy())
	}()
	a.Equal(cfg.ContentKey, ch.Key())
	a.Equal(64, ch.Capacity())
	v, err := ch.GateValue()
	a.NoError(err)
	a.Equal(0, v)
	_, err = CreateChannel(cfg.ContentKey, 64, DefaultPerm)
	a.True(IsKind(err, ErrResourceAlreadyExists))

	ch2, err := AttachChannel(cfg.ContentKey)
	if !a.NoError(err) {
		return
	}
	defer ch2.Close()
	a.Equal(64, ch2.Capacity())
	copy(ch.Data(), "abc")
	a.Equal("abc", string(ch2.Data()[:3]))
	a.NoError(ch.Release())
	a.NoError(ch2.Acquire())
	v, err = ch.GateValue()
	a.NoError(err)
	a.Equal(0, v)
}

func TestChannelReply(t *testing.T) {
	a := assert.New(t)
	cfg := testConfig(t)
	ch, err := CreateChannel(cfg.ContentKey, 64, DefaultPerm)
	if !a.NoError(err) {
		return
	}
	defer ch.Destroy()
	a.NoError(ch.ReleaseReply())
	a.NoError(ch.ReleaseReply())
	a.NoError(ch.Acquire())
	n, err := ch.drainReplies()
	a.NoError(err)
	a.Equal(2, n)
	r, err := ch.ReplyValue()
	a.NoError(err)
	a.Equal(0, r)
	a.NoError(ch.ReleaseReply())
	a.NoError(ch.AcquireReply())
	// the first two releases are still there, one of them is taken by Acquire.
	v, err := ch.GateValue()
	a.NoError(err)
	a.Equal(1, v)
	r, err = ch.ReplyValue()
	a.NoError(err)
	a.Equal(0, r)
	a.True(ch.HasReplySlot())
}

func TestChannelWithoutReplySlot(t *testing.T) {
	a := assert.New(t)
	cfg := testConfig(t)
	// a single semaphore set, as other implementations create.
	s, err := sync.CreateSemaphore(cfg.ContentKey, 1, DefaultPerm)
	if !a.NoError(err) {
		return
	}
	seg, err := shm.CreateSegment(cfg.ContentKey, 64, DefaultPerm)
	if !a.NoError(err) {
		s.Destroy()
		return
	}
	seg.Close()
	ch, err := AttachChannel(cfg.ContentKey)
	if !a.NoError(err) {
		Reclaim(cfg)
		return
	}
	defer func() {
		a.NoError(ch.Destroy())
	}()
	a.False(ch.HasReplySlot())
	a.NoError(ch.ReleaseReply())
	v, err := ch.GateValue()
	a.NoError(err)
	a.Equal(1, v)
	a.NoError(ch.AcquireReply())
	v, err = ch.GateValue()
	a.NoError(err)
	a.Equal(0, v)
	n, err := ch.drainReplies()
	a.NoError(err)
	a.Equal(0, n)
	r, err := ch.ReplyValue()
	a.NoError(err)
	a.Equal(0, r)
}

func TestAttachSmallContentChannel(t *testing.T) {
	a := assert.New(t)
	cfg := testConfig(t)
	content, err := CreateChannel(cfg.ContentKey, DigestLen-1, DefaultPerm)
	if !a.NoError(err) {
		return
	}
	defer content.Destroy()
	size, err := CreateChannel(cfg.SizeKey, DefaultSizeCapacity, DefaultPerm)
	if !a.NoError(err) {
		return
	}
	defer size.Destroy()
	_, err = AttachResourceSet(cfg)
	if a.Error(err) {
		a.False(IsKind(err, ErrResourceNotFound))
		a.Contains(err.Error(), "digest length")
	}
	_, err = NewWriter(cfg)
	a.Error(err)
}

func TestChannelPartialCreate(t *testing.T) {
	a := assert.New(t)
	cfg := testConfig(t)
	// a segment left from a crashed run.
	seg, err := shm.CreateSegment(cfg.SizeKey, 16, DefaultPerm)
	if !a.NoError(err) {
		return
	}
	defer seg.Destroy()
	_, err = CreateChannel(cfg.SizeKey, 16, DefaultPerm)
	a.True(IsKind(err, ErrResourceAlreadyExists))
	// the semaphore created before the failure is rolled back.
	_, err = sync.OpenSemaphore(cfg.SizeKey)
	a.True(common.IsNotExist(err))
}

func TestChannelPartialAttach(t *testing.T) {
	a := assert.New(t)
	cfg := testConfig(t)
	s, err := sync.CreateSemaphore(cfg.SizeKey, gateSetSize, DefaultPerm)
	if !a.NoError(err) {
		return
	}
	defer s.Destroy()
	_, err = AttachChannel(cfg.SizeKey)
	a.True(IsKind(err, ErrResourceNotFound))
}

func TestResourceSetLifecycle(t *testing.T) {
	a := assert.New(t)
	cfg := testConfig(t)
	_, err := AttachResourceSet(cfg)
	a.True(IsKind(err, ErrResourceNotFound))
	set, err := CreateResourceSet(cfg)
	if !a.NoError(err) {
		return
	}
	a.Equal(DefaultSizeCapacity, set.Size.Capacity())
	a.Equal(testCapacity, set.Content.Capacity())
	_, err = CreateResourceSet(cfg)
	a.True(IsKind(err, ErrResourceAlreadyExists))
	// the failed attempt must not remove the live set.
	attached, err := AttachResourceSet(cfg)
	if !a.NoError(err) {
		return
	}
	a.NoError(attached.Close())
	a.NoError(set.Destroy())
	a.NoError(set.Destroy())
	_, err = AttachResourceSet(cfg)
	a.True(IsKind(err, ErrResourceNotFound))
}

func TestResourceSetCreateRollback(t *testing.T) {
	a := assert.New(t)
	cfg := testConfig(t)
	content, err := CreateChannel(cfg.ContentKey, 64, DefaultPerm)
	if !a.NoError(err) {
		return
	}
	defer content.Destroy()
	_, err = CreateResourceSet(cfg)
	a.True(IsKind(err, ErrResourceAlreadyExists))
	_, err = AttachChannel(cfg.SizeKey)
	a.True(IsKind(err, ErrResourceNotFound))
}

func TestResourceSetInvalidConfig(t *testing.T) {
	a := assert.New(t)
	cfg := testConfig(t)
	cfg.SizeKey = cfg.ContentKey
	_, err := CreateResourceSet(cfg)
	a.Error(err)
}
