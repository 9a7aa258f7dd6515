// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmxfer

import (
	"io"
	"os"
	"strconv"
	"syscall"

	"github.com/nxgtw/shmxfer/internal/common"
	"github.com/nxgtw/shmxfer/shm"
	"github.com/nxgtw/shmxfer/sync"

	"github.com/pkg/errors"
)

// channel names, as they appear in events and traces.
const (
	sizeChannelName    = "size"
	contentChannelName = "content"
)

const (
	gateNum  = 0
	replyNum = 1
	// every gate set has a gate and a reply slot.
	gateSetSize = 2
)

// Channel is a gate and a shared memory segment under the same key.
// The gate is the first semaphore of a set, the second one is the reply slot,
// which the reader posts together with the gate when it has written a reply.
// A set without the reply slot, created by another implementation,
// makes reply operations plain gate operations.
type Channel struct {
	name  string
	key   Key
	gate  *sync.Semaphore
	seg   *shm.Segment
	reply bool
}

// CreateChannel creates a gate with value 0 and a segment of capacity bytes.
// It fails with ErrResourceAlreadyExists, if any of them exists.
func CreateChannel(key Key, capacity int, perm os.FileMode) (*Channel, error) {
	return createChannel(strconv.FormatUint(uint64(key), 10), key, capacity, perm)
}

// AttachChannel opens an existing gate and segment.
// It fails with ErrResourceNotFound, if any of them is absent.
func AttachChannel(key Key) (*Channel, error) {
	return attachChannel(strconv.FormatUint(uint64(key), 10), key)
}

func createChannel(name string, key Key, capacity int, perm os.FileMode) (*Channel, error) {
	gate, err := sync.CreateSemaphore(key, gateSetSize, perm)
	if err != nil {
		if common.IsExist(err) {
			return nil, errors.Wrapf(ErrResourceAlreadyExists, "semaphore with key %d", key)
		}
		return nil, errors.Wrapf(err, "failed to create semaphore with key %d", key)
	}
	seg, err := shm.CreateSegment(key, capacity, perm)
	if err != nil {
		gate.Destroy()
		if common.IsExist(err) {
			return nil, errors.Wrapf(ErrResourceAlreadyExists, "shared memory with key %d", key)
		}
		return nil, errors.Wrapf(err, "failed to create shared memory with key %d", key)
	}
	return &Channel{name: name, key: key, gate: gate, seg: seg, reply: true}, nil
}

func attachChannel(name string, key Key) (*Channel, error) {
	gate, err := sync.OpenSemaphore(key)
	if err != nil {
		if common.IsNotExist(err) {
			return nil, errors.Wrapf(ErrResourceNotFound, "semaphore with key %d", key)
		}
		return nil, errors.Wrapf(err, "failed to open semaphore with key %d", key)
	}
	seg, err := shm.OpenSegment(key)
	if err != nil {
		gate.Close()
		if common.IsNotExist(err) {
			return nil, errors.Wrapf(ErrResourceNotFound, "shared memory with key %d", key)
		}
		return nil, errors.Wrapf(err, "failed to open shared memory with key %d", key)
	}
	reply, err := hasReplySlot(gate)
	if err != nil {
		seg.Close()
		return nil, errors.Wrapf(err, "failed to inspect semaphore with key %d", key)
	}
	return &Channel{name: name, key: key, gate: gate, seg: seg, reply: reply}, nil
}

// hasReplySlot checks whether the set has the second semaphore.
func hasReplySlot(gate *sync.Semaphore) (bool, error) {
	_, err := gate.Value(replyNum)
	if err == nil {
		return true, nil
	}
	if common.SyscallErrHasCode(err, syscall.EINVAL) {
		return false, nil
	}
	return false, err
}

// HasReplySlot returns false, if the gate is a single semaphore,
// and replies are indistinguishable from releases.
func (c *Channel) HasReplySlot() bool {
	return c.reply
}

// Key returns the key of the channel.
func (c *Channel) Key() Key {
	return c.key
}

// Capacity returns the size of the channel's segment.
func (c *Channel) Capacity() int {
	return c.seg.Size()
}

// Data returns the channel's memory. It must be accessed only while holding the gate.
func (c *Channel) Data() []byte {
	return c.seg.Data()
}

// reader returns a reader over the first n bytes of the channel's memory.
func (c *Channel) reader(n int) io.Reader {
	return shm.NewSegmentReader(c.seg, n)
}

// writer returns a writer, which fills the channel's memory from its start.
func (c *Channel) writer() io.Writer {
	return shm.NewSegmentWriter(c.seg)
}

// Acquire takes the gate, blocking until it is released.
func (c *Channel) Acquire() error {
	return errors.Wrapf(c.gate.Wait(), "failed to acquire %s gate", c.name)
}

// Release returns the gate.
func (c *Channel) Release() error {
	return errors.Wrapf(c.gate.Signal(), "failed to release %s gate", c.name)
}

// AcquireReply takes the gate once a reply has been posted.
func (c *Channel) AcquireReply() error {
	if !c.reply {
		return errors.Wrapf(c.gate.Wait(), "failed to acquire %s gate", c.name)
	}
	err := c.gate.Do(sync.Op{Num: gateNum, Delta: -1}, sync.Op{Num: replyNum, Delta: -1})
	return errors.Wrapf(err, "failed to acquire %s gate with a reply", c.name)
}

// ReleaseReply returns the gate and posts a reply in one atomic operation.
func (c *Channel) ReleaseReply() error {
	if !c.reply {
		return c.Release()
	}
	err := c.gate.Do(sync.Op{Num: gateNum, Delta: 1}, sync.Op{Num: replyNum, Delta: 1})
	return errors.Wrapf(err, "failed to release %s gate with a reply", c.name)
}

// drainReplies drops replies nobody has taken, returning their number.
// It must be called while holding the gate.
func (c *Channel) drainReplies() (int, error) {
	if !c.reply {
		return 0, nil
	}
	var drained int
	for {
		err := c.gate.Do(sync.Op{Num: replyNum, Delta: -1, NoWait: true})
		if err == sync.ErrWouldBlock {
			return drained, nil
		}
		if err != nil {
			return drained, errors.Wrapf(err, "failed to drain %s replies", c.name)
		}
		drained++
	}
}

// GateValue returns the current value of the gate.
func (c *Channel) GateValue() (int, error) {
	return c.gate.Value(gateNum)
}

// ReplyValue returns the number of posted replies.
func (c *Channel) ReplyValue() (int, error) {
	if !c.reply {
		return 0, nil
	}
	return c.gate.Value(replyNum)
}

// Close detaches the channel. The gate and the segment stay in the system.
func (c *Channel) Close() error {
	c.gate.Close()
	return errors.Wrapf(c.seg.Close(), "failed to detach %s channel", c.name)
}

// Destroy removes the gate and the segment from the system and detaches the channel.
// Objects, which are already gone, are not reported.
func (c *Channel) Destroy() error {
	var result error
	if err := c.gate.Destroy(); err != nil && !common.IsNotExist(err) {
		result = errors.Wrapf(err, "failed to remove %s gate", c.name)
	}
	if err := c.seg.Destroy(); err != nil && !common.IsNotExist(err) && result == nil {
		result = errors.Wrapf(err, "failed to remove %s segment", c.name)
	}
	return result
}

func (c *Channel) abort() error {
	if err := c.gate.Destroy(); err != nil && !common.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove %s gate", c.name)
	}
	return nil
}

// ResourceSet is the size and content channels of a transfer.
type ResourceSet struct {
	Size    *Channel
	Content *Channel
}

// CreateResourceSet creates both channels for the given config.
// If the second channel cannot be created, the first one is removed.
func CreateResourceSet(cfg Config) (*ResourceSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	size, err := createChannel(sizeChannelName, cfg.SizeKey, cfg.SizeCapacity, cfg.Perm)
	if err != nil {
		return nil, err
	}
	content, err := createChannel(contentChannelName, cfg.ContentKey, cfg.Capacity, cfg.Perm)
	if err != nil {
		size.Destroy()
		return nil, err
	}
	return &ResourceSet{Size: size, Content: content}, nil
}

// AttachResourceSet opens both channels for the given config.
func AttachResourceSet(cfg Config) (*ResourceSet, error) {
	size, err := attachChannel(sizeChannelName, cfg.SizeKey)
	if err != nil {
		return nil, err
	}
	content, err := attachChannel(contentChannelName, cfg.ContentKey)
	if err != nil {
		size.Close()
		return nil, err
	}
	set := &ResourceSet{Size: size, Content: content}
	if err = set.checkCapacity(); err != nil {
		set.Close()
		return nil, err
	}
	return set, nil
}

// checkCapacity verifies channels created by someone else.
func (r *ResourceSet) checkCapacity() error {
	if c := r.Content.Capacity(); c < DigestLen {
		return errors.Errorf("content channel with key %d holds %d bytes, less than the digest length %d", r.Content.Key(), c, DigestLen)
	}
	// the smallest size text, a digit and a NUL.
	if c := r.Size.Capacity(); c < 2 {
		return errors.Errorf("size channel with key %d holds %d bytes, cannot hold a size", r.Size.Key(), c)
	}
	return nil
}

// Close detaches both channels.
func (r *ResourceSet) Close() error {
	err := r.Size.Close()
	if cErr := r.Content.Close(); err == nil {
		err = cErr
	}
	return err
}

// Destroy removes both channels from the system.
func (r *ResourceSet) Destroy() error {
	err := r.Size.Destroy()
	if cErr := r.Content.Destroy(); err == nil {
		err = cErr
	}
	return err
}

// abort removes the gates only, waking blocked waiters with an error.
// Segments stay attached until Destroy.
func (r *ResourceSet) abort() error {
	err := r.Size.abort()
	if cErr := r.Content.abort(); err == nil {
		err = cErr
	}
	return err
}
