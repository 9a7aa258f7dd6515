// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmxfer

import "fmt"

// Role is a side of the transfer.
type Role string

// transfer roles.
const (
	RoleWriter    Role = "writer"
	RoleReader    Role = "reader"
	RoleReclaimer Role = "reclaimer"
)

// Op is an operation on a gate or a channel.
type Op int

// gate and channel operations.
const (
	OpAcquire Op = iota
	OpRelease
	OpAcquireReply
	OpReleaseReply
	OpWrite
	OpRead
)

func (op Op) String() string {
	switch op {
	case OpAcquire:
		return "acquire"
	case OpRelease:
		return "release"
	case OpAcquireReply:
		return "acquire-reply"
	case OpReleaseReply:
		return "release-reply"
	case OpWrite:
		return "write"
	case OpRead:
		return "read"
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// State is a step of the writer side handshake.
type State int

// handshake states, in the order a transfer passes them.
const (
	StateIdle State = iota
	StateSizeLocked
	StateSizeWritten
	StateContentLocked
	StateContentWritten
	StateDigestRequested
	StateDigestWritten
	StateVerified
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSizeLocked:
		return "SizeLocked"
	case StateSizeWritten:
		return "SizeWritten"
	case StateContentLocked:
		return "ContentLocked"
	case StateContentWritten:
		return "ContentWritten"
	case StateDigestRequested:
		return "DigestRequested"
	case StateDigestWritten:
		return "DigestWritten"
	case StateVerified:
		return "Verified"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Event describes an operation, which has just completed.
type Event struct {
	Role    Role
	Channel string
	Op      Op
	// Bytes is the number of bytes written or read, 0 for gate operations.
	// For a size channel read it is the decoded size.
	Bytes int
}

func (ev Event) String() string {
	return fmt.Sprintf("%s %s %s %d", ev.Role, ev.Op, ev.Channel, ev.Bytes)
}
