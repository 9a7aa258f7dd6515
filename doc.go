// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package shmxfer transfers a file's contents between two processes
// through System V shared memory, synchronized by System V semaphores.
//
// Two channels are used, each one is a semaphore set and a shared memory
// segment under the same key:
//	size channel - holds the payload length as decimal text and a NUL byte.
//	content channel - holds the payload, and, if the integrity check is on,
//		the md5 of the received payload written back by the reader.
//
// The reader creates the channels and waits. The writer attaches,
// passes the size, then the content, and optionally reads the digest back.
// Semaphore waits never time out: a writer without a reader, or a reader
// whose writer crashed mid-transfer, stays blocked. Objects survive process
// exit, so a crashed run must be cleaned up with Reclaim.
package shmxfer
