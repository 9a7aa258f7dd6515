// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build linux && (amd64 || arm64)
// +build linux
// +build amd64 arm64

package sync

import (
	"os"
	"syscall"
	"unsafe"

	"github.com/nxgtw/shmxfer/internal/allocator"
	"github.com/nxgtw/shmxfer/internal/common"

	"golang.org/x/sys/unix"
)

func semget(k common.Key, nsems, semflg int) (int, error) {
	id, _, err := unix.Syscall(unix.SYS_SEMGET, uintptr(k), uintptr(nsems), uintptr(semflg))
	if err != syscall.Errno(0) {
		if err == unix.EEXIST || err == unix.ENOENT {
			return 0, &os.PathError{Op: "SEMGET", Path: "", Err: err}
		}
		return 0, os.NewSyscallError("SEMGET", err)
	}
	return int(id), nil
}

func semctl(id, num, cmd int) (int, error) {
	result, _, err := unix.Syscall6(unix.SYS_SEMCTL, uintptr(id), uintptr(num), uintptr(cmd), 0, 0, 0)
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
	_, _, err := unix.Syscall(unix.SYS_SEMOP, uintptr(id), uintptr(pOps), uintptr(len(ops)))
	allocator.Use(pOps)
	if err != syscall.Errno(0) {
		return os.NewSyscallError("SEMOP", err)
	}
	return nil
}
