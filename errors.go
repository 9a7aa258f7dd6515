// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmxfer

import (
	"github.com/pkg/errors"
)

// Errors reported by the transfer roles. They are wrapped with context,
// use errors.Cause to compare.
var (
	// ErrResourceAlreadyExists is returned, when the reader creates channels,
	// which are still live from a previous run. Run Reclaim first.
	ErrResourceAlreadyExists = errors.New("ipc resource already exists")
	// ErrResourceNotFound is returned, when the writer attaches before the reader has created the channels.
	ErrResourceNotFound = errors.New("ipc resource not found")
	// ErrFileNotFound is returned, when the input file does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrFileUnreadable is returned, when the input file exists, but cannot be read.
	ErrFileUnreadable = errors.New("file unreadable")
	// ErrPayloadTooLarge is returned, when the payload does not fit into the content channel.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrDigestMismatch is returned, when the digest written back by the reader differs from the local one.
	ErrDigestMismatch = errors.New("digest mismatch")
)

// IsKind returns true, if the cause of err is the given sentinel error.
func IsKind(err, kind error) bool {
	return err != nil && errors.Cause(err) == kind
}

// ExitCode maps an error returned by a role to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
