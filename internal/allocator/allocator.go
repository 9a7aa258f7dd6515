// Copyright 2015 Aleksandr Demakin. All rights reserved.

// Package allocator keeps memory passed to raw syscalls alive.
package allocator

import (
	"runtime"
	"unsafe"
)

// Use ensures that p is kept live until that point.
// Pointers passed to raw syscalls as uintptr must be used after the call.
func Use(p unsafe.Pointer) {
	runtime.KeepAlive(p)
}
