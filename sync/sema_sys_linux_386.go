// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build linux && 386
// +build linux,386

package sync

import (
	"os"
	"syscall"
	"unsafe"

	"github.com/nxgtw/shmxfer/internal/allocator"
	"github.com/nxgtw/shmxfer/internal/common"

	"golang.org/x/sys/unix"
)

// ipc(2) multiplexer calls.
const (
	cSEMOP  = 1
	cSEMGET = 2
	cSEMCTL = 3
)

// semun is a union used in semctl syscall. is not not actually used, so its size
// matches the size in kernel. we need one only global readonly pointer to it.
type semun struct {
	unused uintptr
}

var (
	semunInst = unsafe.Pointer(&semun{})
)

func semget(k common.Key, nsems, semflg int) (int, error) {
	id, _, err := unix.Syscall6(unix.SYS_IPC, cSEMGET, uintptr(k), uintptr(nsems), uintptr(semflg), 0, 0)
	if err != syscall.Errno(0) {
		if err == unix.EEXIST || err == unix.ENOENT {
			return 0, &os.PathError{Op: "SEMGET", Path: "", Err: err}
		}
		return 0, os.NewSyscallError("SEMGET", err)
	}
	return int(id), nil
}

func semctl(id, num, cmd int) (int, error) {
	result, _, err := unix.Syscall6(unix.SYS_IPC, cSEMCTL, uintptr(id), uintptr(num), uintptr(cmd), uintptr(semunInst), 0)
	if err != syscall.Errno(0) {
		return 0, os.NewSyscallError("SEMCTL", err)
	}
	return int(result), nil
}

func semop(id int, ops []sembuf) error {
	if len(ops) == 0 {
		return nil
	}
	pOps := unsafe.Pointer(&ops[0])
	_, _, err := unix.Syscall6(unix.SYS_IPC, cSEMOP, uintptr(id), uintptr(len(ops)), 0, uintptr(pOps), 0)
	allocator.Use(pOps)
	if err != syscall.Errno(0) {
		return os.NewSyscallError("SEMOP", err)
	}
	return nil
}
