// Copyright 2016 Aleksandr Demakin. All rights reserved.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nxgtw/shmxfer"
)

var (
	verify     = flag.Bool("m", false, "verify the transfer with an md5 round-trip")
	verbose    = flag.Bool("v", false, "print timestamped progress to stdout")
	contentKey = flag.Uint64("content-key", uint64(shmxfer.DefaultContentKey), "content channel key")
	sizeKey    = flag.Uint64("size-key", uint64(shmxfer.DefaultSizeKey), "size channel key")
)

const usage = `  sends a file to a running shmxfer-reader through System V shared memory.
usage:
  shmxfer-writer [flags] <input>
flags:
`

func run(path string) error {
	log := shmxfer.NewLogger(shmxfer.RoleWriter, *verbose, os.Stdout)
	cfg := shmxfer.DefaultConfig()
	cfg.ContentKey = shmxfer.Key(*contentKey)
	cfg.SizeKey = shmxfer.Key(*sizeKey)
	cfg.Verify = *verify
	cfg.Logger = log
	w, err := shmxfer.NewWriter(cfg)
	if err != nil {
		return err
	}
	defer w.Close()
	if err = w.SendFile(path); err != nil {
		return err
	}
	log.Debugf("done, state %s", w.State())
	return nil
}

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	err := run(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
	os.Exit(shmxfer.ExitCode(err))
}
