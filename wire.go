// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmxfer

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"strconv"

	"github.com/pkg/errors"
)

// DigestLen is the length of the digest text the reader writes back.
const DigestLen = md5.Size * 2

// encodeSize writes n as decimal text followed by a NUL byte.
func encodeSize(dst []byte, n int) error {
	if n < 0 {
		return errors.Errorf("invalid size %d", n)
	}
	text := strconv.Itoa(n)
	if len(text)+1 > len(dst) {
		return errors.Errorf("size %d does not fit into %d bytes", n, len(dst))
	}
	copy(dst, text)
	dst[len(text)] = 0
	return nil
}

// clearSize marks the size channel as empty: a lone NUL byte.
// "0" is a valid size of an empty payload.
func clearSize(dst []byte) {
	if len(dst) > 0 {
		dst[0] = 0
	}
}

// decodeSize parses decimal text up to the first NUL byte.
// present is false, if the channel is empty.
func decodeSize(src []byte) (n int, present bool, err error) {
	if idx := bytes.IndexByte(src, 0); idx >= 0 {
		src = src[:idx]
	}
	if len(src) == 0 {
		return 0, false, nil
	}
	if n, err = strconv.Atoi(string(src)); err != nil {
		return 0, true, errors.Wrapf(err, "invalid size %q", src)
	}
	if n < 0 {
		return 0, true, errors.Errorf("negative size %d", n)
	}
	return n, true, nil
}

// sizeConsumed returns true, if the size channel holds no pending size.
// Besides the lone NUL, a zero size counts as consumed: readers,
// which mark an idle channel with "0", never clear it otherwise.
func sizeConsumed(src []byte) bool {
	n, present, err := decodeSize(src)
	return err == nil && (!present || n == 0)
}

// Digest returns the lower-case hex md5 of data.
func Digest(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
