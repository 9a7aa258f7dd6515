// Copyright 2016 Aleksandr Demakin. All rights reserved.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nxgtw/shmxfer"
)

var (
	verbose    = flag.Bool("v", false, "print timestamped progress to stdout")
	contentKey = flag.Uint64("content-key", uint64(shmxfer.DefaultContentKey), "content channel key")
	sizeKey    = flag.Uint64("size-key", uint64(shmxfer.DefaultSizeKey), "size channel key")
)

const usage = `  removes the semaphores and shared memory segments left by a previous transfer.
usage:
  shmxfer-reclaim [flags]
flags:
`

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(1)
	}
	cfg := shmxfer.DefaultConfig()
	cfg.ContentKey = shmxfer.Key(*contentKey)
	cfg.SizeKey = shmxfer.Key(*sizeKey)
	cfg.Logger = shmxfer.NewLogger(shmxfer.RoleReclaimer, *verbose, os.Stdout)
	results := shmxfer.Reclaim(cfg)
	for _, res := range results {
		fmt.Println(res)
	}
	err := shmxfer.ReclaimFailed(results)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
	os.Exit(shmxfer.ExitCode(err))
}
