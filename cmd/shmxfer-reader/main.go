// Copyright 2016 Aleksandr Demakin. All rights reserved.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nxgtw/shmxfer"
	"github.com/nxgtw/shmxfer/spool"

	"github.com/google/gops/agent"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var (
	verify     = flag.Bool("m", false, "write the md5 of every transfer back to the writer")
	verbose    = flag.Bool("v", false, "print timestamped progress to stdout")
	outDir     = flag.String("o", spool.DefaultDir, "directory for received files")
	gops       = flag.Bool("gops", false, "start the gops diagnostics agent")
	contentKey = flag.Uint64("content-key", uint64(shmxfer.DefaultContentKey), "content channel key")
	sizeKey    = flag.Uint64("size-key", uint64(shmxfer.DefaultSizeKey), "size channel key")
	capacity   = flag.Int("capacity", shmxfer.DefaultCapacity, "content channel size in bytes")
)

const usage = `  receives files from shmxfer-writer through System V shared memory
  until interrupted, and stores them as numbered files.
  the ipc objects are removed on SIGINT or SIGTERM.
usage:
  shmxfer-reader [flags]
flags:
`

func run() error {
	log := shmxfer.NewLogger(shmxfer.RoleReader, *verbose, os.Stdout)
	if *gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			return errors.Wrap(err, "failed to start gops agent")
		}
		defer agent.Close()
	}
	cfg := shmxfer.DefaultConfig()
	cfg.ContentKey = shmxfer.Key(*contentKey)
	cfg.SizeKey = shmxfer.Key(*sizeKey)
	cfg.Capacity = *capacity
	cfg.Verify = *verify
	cfg.Logger = log
	dir, err := spool.NewDir(*outDir, spool.DefaultBaseName, spool.DefaultExt, log)
	if err != nil {
		return err
	}
	r, err := shmxfer.NewReader(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := r.Destroy(); err != nil {
			log.Errorf("failed to remove ipc objects: %v", err)
		} else {
			log.Debug("removed ipc objects")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.Run(gctx, dir)
	})
	g.Go(func() error {
		<-gctx.Done()
		// wakes Run, if it is blocked on a gate.
		return r.Abort()
	})
	err = g.Wait()
	if ctx.Err() != nil {
		log.Debugf("interrupted, %d files received", dir.Count())
		return nil
	}
	return err
}

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
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
	os.Exit(shmxfer.ExitCode(err))
}
