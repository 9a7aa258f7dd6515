// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build linux
// +build linux

package common

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	IpcCreate = 00001000 /* create if key is nonexistent */
	IpcExcl   = 00002000 /* fail if key exists */
	IpcNoWait = 00004000 /* return error on wait */

	IpcRmid = 0 /* remove resource */

	SemGetVal  = 12 /* get semval */
	SemGetNcnt = 14 /* get semncnt */
)

// Key is a System V ipc key.
type Key uint64

// KeyForName creates a temporary file with the given name
// and returns an ftok key for it.
func KeyForName(name string) (Key, error) {
	name = TmpFilename(name)
	file, err := os.Create(name)
	if err != nil {
		return 0, errors.New("invalid name for key")
	}
	file.Close()
	k, err := Ftok(name)
	if err != nil {
		os.Remove(name)
		return 0, errors.New("invalid name for key")
	}
	return k, nil
}

// TmpFilename returns the path of the file KeyForName uses for a name.
func TmpFilename(name string) string {
	return filepath.Join(os.TempDir(), name)
}

// Ftok mimics ftok(3) with proj_id 0.
func Ftok(name string) (Key, error) {
	var statfs unix.Stat_t
	if err := unix.Stat(name, &statfs); err != nil {
		return Key(0), err
	}
	return Key(uint64(statfs.Ino)&0xFFFF | ((uint64(statfs.Dev) & 0xFF) << 16)), nil
}
