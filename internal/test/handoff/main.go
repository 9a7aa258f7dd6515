// Copyright 2016 Aleksandr Demakin. All rights reserved.

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nxgtw/shmxfer"
	"github.com/nxgtw/shmxfer/internal/test"

	"github.com/pkg/errors"
)

var (
	contentKey = flag.Uint64("content-key", 0, "content channel key")
	sizeKey    = flag.Uint64("size-key", 0, "size channel key")
	capacity   = flag.Int("capacity", shmxfer.DefaultCapacity, "content channel size")
	verify     = flag.Bool("m", false, "md5 round-trip")
	timeout    = flag.Duration("timeout", 30*time.Second, "receive timeout")
)

const usage = `  test program for the shmxfer handoff.
available commands:
  send {data}
    attaches to the channels and sends data.
  receive {data}
    creates the channels, receives one transfer and compares it with data.
    the channels are left in the system.
data should be passed as a continuous string of 2-symbol hex byte values like '01020A'
`

func config() shmxfer.Config {
	cfg := shmxfer.DefaultConfig()
	cfg.ContentKey = shmxfer.Key(*contentKey)
	cfg.SizeKey = shmxfer.Key(*sizeKey)
	cfg.Capacity = *capacity
	cfg.Verify = *verify
	return cfg
}

func send(data []byte) error {
	w, err := shmxfer.NewWriter(config())
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Send(data)
}

func receive(expected []byte) error {
	r, err := shmxfer.NewReader(config())
	if err != nil {
		return err
	}
	defer r.Close()
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	t, err := r.Receive(ctx)
	if err != nil {
		return err
	}
	if !bytes.Equal(expected, t.Payload) {
		return errors.Errorf("invalid payload. expected %d bytes, got %d", len(expected), len(t.Payload))
	}
	return nil
}

func runCommand() error {
	if flag.NArg() != 2 {
		return errors.New("must provide a command and data")
	}
	data, err := shmxfertest.StringToBytes(flag.Arg(1))
	if err != nil {
		return err
	}
	switch flag.Arg(0) {
	case "send":
		return send(data)
	case "receive":
		return receive(data)
	default:
		return errors.Errorf("unknown command %q", flag.Arg(0))
	}
}

func main() {
	flag.Parse()
	if *contentKey == 0 || *sizeKey == 0 || flag.NArg() == 0 {
		fmt.Print(usage)
		flag.Usage()
		os.Exit(1)
	}
	if err := runCommand(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
