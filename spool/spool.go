// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package spool stores received transfers as numbered files in a directory.
package spool

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/nxgtw/shmxfer"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// default file naming, <dir>/file01.jpg, <dir>/file02.jpg...
const (
	DefaultDir      = "output"
	DefaultBaseName = "file"
	DefaultExt      = ".jpg"
)

// Dir writes every transfer it handles into a new file.
type Dir struct {
	path     string
	baseName string
	ext      string
	count    int
	log      logrus.FieldLogger
}

var _ shmxfer.Handler = (*Dir)(nil)

// NewDir creates the directory, if needed.
// Files are named baseName, followed by a 2-digit counter starting with 1, and ext.
func NewDir(path, baseName, ext string, log logrus.FieldLogger) (*Dir, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create spool directory")
	}
	if log == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		log = l
	}
	return &Dir{path: path, baseName: baseName, ext: ext, log: log}, nil
}

// Next returns the path of the file the next transfer is written to.
func (d *Dir) Next() string {
	return filepath.Join(d.path, fmt.Sprintf("%s%02d%s", d.baseName, d.count+1, d.ext))
}

// HandleTransfer writes the payload to the next file.
func (d *Dir) HandleTransfer(t *shmxfer.Transfer) error {
	name := d.Next()
	if err := ioutil.WriteFile(name, t.Payload, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", name)
	}
	d.count++
	d.log.Infof("File written (size %d). Path: %s", len(t.Payload), name)
	return nil
}

// Count returns the number of files written.
func (d *Dir) Count() int {
	return d.count
}
