// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmxfer

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Transfer is a payload received by the reader.
type Transfer struct {
	// Seq is the number of the transfer since the reader was created, starting with 1.
	Seq int
	// Payload is a copy of the received bytes.
	Payload []byte
	// Digest is the md5 written back to the writer. Empty if verify mode is off.
	Digest string
}

// Handler processes received transfers.
type Handler interface {
	HandleTransfer(t *Transfer) error
}

// HandlerFunc is an adapter to use ordinary functions as a Handler.
type HandlerFunc func(t *Transfer) error

// HandleTransfer calls f(t).
func (f HandlerFunc) HandleTransfer(t *Transfer) error {
	return f(t)
}

// Reader is the receiving side of a transfer. It owns the channels.
type Reader struct {
	cfg Config
	set *ResourceSet
	log logrus.FieldLogger
	seq int
}

// NewReader creates the channels and signals the writer that it is ready.
// It fails with ErrResourceAlreadyExists, if channels from a previous run are live.
func NewReader(cfg Config) (*Reader, error) {
	set, err := CreateResourceSet(cfg)
	if err != nil {
		return nil, err
	}
	r := &Reader{cfg: cfg, set: set, log: cfg.logger()}
	r.log.Debugf("created content key %d (%d bytes) and size key %d (%d bytes)",
		cfg.ContentKey, set.Content.Capacity(), cfg.SizeKey, set.Size.Capacity())
	clearSize(set.Size.Data())
	if err = set.Size.Release(); err != nil {
		set.Destroy()
		return nil, err
	}
	if err = set.Content.Release(); err != nil {
		set.Destroy()
		return nil, err
	}
	r.log.Debug("ready")
	return r, nil
}

// Receive waits for the next transfer.
// While the size channel is empty it polls it, checking ctx between polls.
// Once the size is seen, it blocks until the content is released by the writer.
// The size gate is held until the content is consumed, so that the next writer
// cannot take the content gate ahead of the reader.
func (r *Reader) Receive(ctx context.Context) (*Transfer, error) {
	n, err := r.waitSize(ctx)
	if err != nil {
		return nil, err
	}
	t, err := r.receiveContent(n)
	r.log.Debug("releasing size gate")
	if relErr := r.set.Size.Release(); relErr != nil {
		if err == nil {
			err = relErr
		}
	} else {
		r.observe(sizeChannelName, OpRelease, 0)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *Reader) receiveContent(n int) (*Transfer, error) {
	content := r.set.Content
	r.log.Debug("acquiring content gate")
	if err := content.Acquire(); err != nil {
		return nil, err
	}
	r.observe(contentChannelName, OpAcquire, 0)
	if n > content.Capacity() {
		content.Release()
		r.observe(contentChannelName, OpRelease, 0)
		return nil, errors.Wrapf(ErrPayloadTooLarge, "writer announced %d bytes, capacity is %d", n, content.Capacity())
	}
	r.seq++
	t := &Transfer{Seq: r.seq, Payload: make([]byte, n)}
	if _, err := io.ReadFull(content.reader(n), t.Payload); err != nil {
		content.Release()
		r.observe(contentChannelName, OpRelease, 0)
		return nil, errors.Wrap(err, "failed to read content")
	}
	r.observe(contentChannelName, OpRead, n)
	r.log.Debugf("received transfer %d (size %d)", t.Seq, n)
	if !r.cfg.Verify {
		r.log.Debug("releasing content gate")
		if err := content.Release(); err != nil {
			return nil, err
		}
		r.observe(contentChannelName, OpRelease, 0)
		return t, nil
	}
	t.Digest = Digest(t.Payload)
	copy(content.Data(), t.Digest)
	r.observe(contentChannelName, OpWrite, DigestLen)
	r.log.Debugf("hash = %s", t.Digest)
	r.log.Debug("releasing content gate (digest written)")
	if err := content.ReleaseReply(); err != nil {
		return nil, err
	}
	r.observe(contentChannelName, OpReleaseReply, 0)
	return t, nil
}

// waitSize polls the size channel until the writer puts a size into it.
// On success it returns with the size gate held and the channel cleared.
func (r *Reader) waitSize(ctx context.Context) (int, error) {
	size := r.set.Size
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := size.Acquire(); err != nil {
			return 0, err
		}
		n, present, decodeErr := decodeSize(size.Data())
		if !present {
			if err := size.Release(); err != nil {
				return 0, err
			}
			if err := r.pause(ctx); err != nil {
				return 0, err
			}
			continue
		}
		r.observe(sizeChannelName, OpAcquire, 0)
		r.observe(sizeChannelName, OpRead, n)
		clearSize(size.Data())
		if decodeErr != nil {
			size.Release()
			r.observe(sizeChannelName, OpRelease, 0)
			return 0, errors.Wrap(decodeErr, "malformed size channel")
		}
		r.log.Debugf("contentsize=%d", n)
		return n, nil
	}
}

func (r *Reader) pause(ctx context.Context) error {
	if r.cfg.PollInterval <= 0 {
		return nil
	}
	t := time.NewTimer(r.cfg.PollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run receives transfers and passes them to h until ctx is done,
// or an error occurs. It always returns a non-nil error.
func (r *Reader) Run(ctx context.Context, h Handler) error {
	for {
		t, err := r.Receive(ctx)
		if err != nil {
			return err
		}
		if err = h.HandleTransfer(t); err != nil {
			return errors.Wrapf(err, "failed to handle transfer %d", t.Seq)
		}
	}
}

// Abort removes the gates, so that a Receive blocked on a gate returns an error.
// The segments stay attached until Destroy.
func (r *Reader) Abort() error {
	return r.set.abort()
}

// Close detaches the channels, leaving them in the system.
func (r *Reader) Close() error {
	return r.set.Close()
}

// Destroy removes the channels from the system.
func (r *Reader) Destroy() error {
	return r.set.Destroy()
}

func (r *Reader) observe(channel string, op Op, n int) {
	r.cfg.observe(Event{Role: RoleReader, Channel: channel, Op: op, Bytes: n})
}
