// Copyright 2015 Aleksandr Demakin. All rights reserved.

package shmxfer

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nxgtw/shmxfer/internal/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handoffProgName = "./internal/test/handoff/main.go"
	// includes the time 'go run' needs to build the program.
	handoffTimeout = 60 * time.Second
)

func argsForHandoffCommand(cfg Config, command string, data []byte) []string {
	return []string{
		handoffProgName,
		fmt.Sprintf("-content-key=%d", cfg.ContentKey),
		fmt.Sprintf("-size-key=%d", cfg.SizeKey),
		fmt.Sprintf("-capacity=%d", cfg.Capacity),
		fmt.Sprintf("-m=%v", cfg.Verify),
		command,
		shmxfertest.BytesToString(data),
	}
}

func TestTwoProcessWriter(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and runs a helper program")
	}
	a := assert.New(t)
	cfg := testConfig(t)
	cfg.Verify = true
	payload := bytes.Repeat([]byte("0123456789"), 300)
	r, err := NewReader(cfg)
	require.NoError(t, err)
	defer r.Destroy()

	ch := shmxfertest.RunTestAppAsync(argsForHandoffCommand(cfg, "send", payload), nil)
	ctx, cancel := context.WithTimeout(context.Background(), handoffTimeout)
	defer cancel()
	received, err := r.Receive(ctx)
	if a.NoError(err) {
		a.Equal(payload, received.Payload)
		a.Equal(Digest(payload), received.Digest)
	}
	result, ok := shmxfertest.WaitForAppResultChan(ch, handoffTimeout)
	if a.True(ok, "the writer has not finished") {
		a.NoError(result.Err, result.Output)
	}
}

func TestTwoProcessReader(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and runs a helper program")
	}
	a := assert.New(t)
	cfg := testConfig(t)
	cfg.Verify = true
	payload := []byte("hello, world!")
	defer Reclaim(cfg)

	killChan := make(chan bool, 1)
	defer func() { killChan <- true }()
	ch := shmxfertest.RunTestAppAsync(argsForHandoffCommand(cfg, "receive", payload), killChan)

	// the reader is started in background, wait for its channels.
	var w *Writer
	deadline := time.Now().Add(handoffTimeout)
	for {
		var err error
		if w, err = NewWriter(cfg); err == nil {
			break
		}
		require.True(t, IsKind(err, ErrResourceNotFound), "%v", err)
		select {
		case result := <-ch:
			t.Fatalf("the reader has exited: %v\n%s", result.Err, result.Output)
		case <-time.After(50 * time.Millisecond):
		}
		require.True(t, time.Now().Before(deadline), "the reader has not created the channels")
	}
	defer w.Close()
	a.NoError(w.Send(payload))
	a.Equal(StateVerified, w.State())
	result, ok := shmxfertest.WaitForAppResultChan(ch, handoffTimeout)
	if a.True(ok, "the reader has not finished") {
		a.NoError(result.Err, result.Output)
	}
}
