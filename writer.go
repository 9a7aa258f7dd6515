// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmxfer

import (
	"io/ioutil"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Writer is the sending side of a transfer.
// It requires a reader, which has created the channels and follows its cadence:
//	take the size gate, read the size and clear the channel;
//	take the content gate, read the payload;
//	release the content gate, or, in verify mode, write the digest
//	over the payload and release the content gate posting a reply;
//	release the size gate.
// The writer takes the size gate only when the size channel is clear
// (a lone NUL or "0"), so a transfer never overwrites a size the reader
// has not consumed. A pending zero size is the exception: it looks idle.
type Writer struct {
	cfg   Config
	set   *ResourceSet
	log   logrus.FieldLogger
	state State
}

// NewWriter attaches to the channels the reader has created.
// It fails with ErrResourceNotFound, if the reader has not been started.
func NewWriter(cfg Config) (*Writer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	set, err := AttachResourceSet(cfg)
	if err != nil {
		return nil, err
	}
	w := &Writer{cfg: cfg, set: set, log: cfg.logger()}
	w.log.Debugf("attached to content key %d and size key %d", cfg.ContentKey, cfg.SizeKey)
	if cfg.Verify && !set.Content.HasReplySlot() {
		w.log.Warn("content gate has no reply slot, the digest may be read before the reader writes it")
	}
	return w, nil
}

// State returns the handshake state the last transfer has reached.
func (w *Writer) State() State {
	return w.state
}

// SendFile reads the file and sends its contents.
func (w *Writer) SendFile(path string) error {
	payload, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrFileNotFound, "%s", path)
		}
		return errors.Wrapf(ErrFileUnreadable, "%s: %v", path, err)
	}
	w.log.Debugf("read %d bytes from %s", len(payload), path)
	return w.Send(payload)
}

// Send transfers the payload. It blocks until the reader takes it and,
// in verify mode, until the reader writes back the digest.
// A payload, which does not fit into the content channel, is rejected
// with ErrPayloadTooLarge before any gate is touched.
func (w *Writer) Send(payload []byte) error {
	size, content := w.set.Size, w.set.Content
	if len(payload) > content.Capacity() {
		return errors.Wrapf(ErrPayloadTooLarge, "%d bytes, capacity is %d", len(payload), content.Capacity())
	}
	w.state = StateIdle

	if err := w.lockSize(); err != nil {
		return err
	}
	w.transition(StateSizeLocked, sizeChannelName, OpAcquire, 0)

	w.log.Debugf("writing size %d", len(payload))
	if err := encodeSize(size.Data(), len(payload)); err != nil {
		size.Release()
		return err
	}
	w.transition(StateSizeWritten, sizeChannelName, OpWrite, len(payload))

	w.log.Debug("acquiring content gate")
	if err := content.Acquire(); err != nil {
		size.Release()
		return err
	}
	w.transition(StateContentLocked, contentChannelName, OpAcquire, 0)
	if n, err := content.drainReplies(); err != nil {
		w.log.Warnf("failed to drain replies: %v", err)
	} else if n > 0 {
		w.log.Warnf("dropped %d stale replies", n)
	}

	w.log.Debug("releasing size gate")
	if err := size.Release(); err != nil {
		content.Release()
		return err
	}
	w.observe(sizeChannelName, OpRelease, 0)

	w.log.Debug("writing content")
	if _, err := content.writer().Write(payload); err != nil {
		content.Release()
		return errors.Wrap(err, "failed to write content")
	}
	w.transition(StateContentWritten, contentChannelName, OpWrite, len(payload))

	w.log.Debug("releasing content gate (content written)")
	if err := content.Release(); err != nil {
		return err
	}
	w.observe(contentChannelName, OpRelease, 0)

	if !w.cfg.Verify {
		w.log.Debug("skipping digest check")
		return nil
	}
	return w.verify(payload)
}

// lockSize takes the size gate once the reader has consumed the previous size.
func (w *Writer) lockSize() error {
	size := w.set.Size
	for {
		w.log.Debug("acquiring size gate")
		if err := size.Acquire(); err != nil {
			return err
		}
		if sizeConsumed(size.Data()) {
			return nil
		}
		if err := size.Release(); err != nil {
			return err
		}
		w.log.Debug("previous size is not consumed yet")
		if w.cfg.PollInterval > 0 {
			time.Sleep(w.cfg.PollInterval)
		}
	}
}

func (w *Writer) verify(payload []byte) (err error) {
	content := w.set.Content
	w.state = StateDigestRequested
	w.log.Debug("acquiring content gate (digest)")
	if err = content.AcquireReply(); err != nil {
		return err
	}
	w.transition(StateDigestWritten, contentChannelName, OpAcquireReply, 0)
	defer func() {
		w.log.Debug("releasing content gate (finish)")
		if relErr := content.Release(); relErr != nil && err == nil {
			err = relErr
		}
		w.observe(contentChannelName, OpRelease, 0)
	}()

	received := string(content.Data()[:DigestLen])
	w.observe(contentChannelName, OpRead, DigestLen)
	local := Digest(payload)
	w.log.Debugf("content digest = %s", local)
	w.log.Debugf("received digest = %s", received)
	if received != local {
		return errors.Wrapf(ErrDigestMismatch, "sent %s, reader has %s", local, received)
	}
	w.state = StateVerified
	w.log.Debug("digest matched")
	return nil
}

func (w *Writer) transition(to State, channel string, op Op, n int) {
	w.state = to
	w.observe(channel, op, n)
}

func (w *Writer) observe(channel string, op Op, n int) {
	w.cfg.observe(Event{Role: RoleWriter, Channel: channel, Op: op, Bytes: n})
}

// Close detaches from the channels. They stay in the system for the next transfer.
func (w *Writer) Close() error {
	return w.set.Close()
}
