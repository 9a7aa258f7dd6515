// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shm

import (
	"bytes"
	"io"
)

// SegmentReader is a reader for safe operations over a shared memory segment.
// It holds a reference to the segment, so the former can't be gc'ed.
type SegmentReader struct {
	segment *Segment
	*bytes.Reader
}

// NewSegmentReader creates a new reader for the first n bytes of the given segment.
// n is truncated to the segment size.
func NewSegmentReader(segment *Segment, n int) *SegmentReader {
	data := segment.Data()
	if n < len(data) {
		data = data[:n]
	}
	return &SegmentReader{
		segment: segment,
		Reader:  bytes.NewReader(data),
	}
}

// SegmentWriter is a writer for safe operations over a shared memory segment.
// It holds a reference to the segment, so the former can't be gc'ed.
type SegmentWriter struct {
	segment *Segment
	pos     int64
}

// NewSegmentWriter creates a new writer for the given segment.
func NewSegmentWriter(segment *Segment) *SegmentWriter {
	return &SegmentWriter{segment: segment}
}

// WriteAt is to implement io.WriterAt.
// It returns io.ErrShortWrite, if p does not fit into the segment.
func (w *SegmentWriter) WriteAt(p []byte, off int64) (n int, err error) {
	data := w.segment.Data()
	if off < 0 || off > int64(len(data)) {
		return 0, io.ErrShortWrite
	}
	n = copy(data[off:], p)
	if n < len(p) {
		err = io.ErrShortWrite
	}
	return
}

// Write is to implement io.Writer.
func (w *SegmentWriter) Write(p []byte) (n int, err error) {
	n, err = w.WriteAt(p, w.pos)
	w.pos += int64(n)
	return n, err
}
