// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmxfer

import (
	"io/ioutil"
	"os"
	"strconv"
	"time"

	"github.com/nxgtw/shmxfer/internal/common"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Key is a System V ipc key.
type Key = common.Key

// default protocol parameters. Both sides must agree on them.
const (
	DefaultContentKey   Key = 42
	DefaultSizeKey      Key = 44
	DefaultCapacity         = 5000000
	DefaultSizeCapacity     = 10
	DefaultPerm             = os.FileMode(0600)
	DefaultPollInterval     = time.Millisecond
)

// Config holds the parameters of a transfer.
type Config struct {
	// ContentKey identifies the content gate and channel.
	ContentKey Key
	// SizeKey identifies the size gate and channel.
	SizeKey Key
	// Capacity is the content channel size, the largest payload, which can be sent.
	Capacity int
	// SizeCapacity is the size channel size.
	SizeCapacity int
	// Perm is used for the objects the reader creates.
	Perm os.FileMode
	// Verify enables the digest round-trip. Reader and writer must use the same value.
	Verify bool
	// PollInterval is the pause between two reads of an empty size channel by the reader.
	PollInterval time.Duration
	// Logger receives trace lines. Nil means no output.
	Logger logrus.FieldLogger
	// Observer, if set, is called after each gate and channel operation.
	Observer func(Event)
}

// DefaultConfig returns the configuration both sides use when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		ContentKey:   DefaultContentKey,
		SizeKey:      DefaultSizeKey,
		Capacity:     DefaultCapacity,
		SizeCapacity: DefaultSizeCapacity,
		Perm:         DefaultPerm,
		PollInterval: DefaultPollInterval,
	}
}

// Validate checks that the config describes a usable pair of channels.
func (c Config) Validate() error {
	if c.ContentKey == 0 || c.SizeKey == 0 {
		return errors.New("keys must be non-zero")
	}
	if c.ContentKey == c.SizeKey {
		return errors.Errorf("content and size keys must differ, both are %d", c.ContentKey)
	}
	if c.Capacity < DigestLen {
		return errors.Errorf("capacity %d is less than the digest length %d", c.Capacity, DigestLen)
	}
	if need := len(strconv.Itoa(c.Capacity)) + 1; c.SizeCapacity < need {
		return errors.Errorf("size capacity %d cannot hold sizes up to %d, need %d bytes", c.SizeCapacity, c.Capacity, need)
	}
	if c.PollInterval < 0 {
		return errors.New("negative poll interval")
	}
	return nil
}

func (c Config) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	l := logrus.New()
	l.Out = ioutil.Discard
	return l
}

func (c Config) observe(ev Event) {
	if c.Observer != nil {
		c.Observer(ev)
	}
}
