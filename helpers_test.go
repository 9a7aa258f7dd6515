// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmxfer

import (
	"context"
	"os"
	gosync "sync"
	"testing"

	"github.com/nxgtw/shmxfer/internal/common"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const (
	testContentName = "shmxfer-test-content"
	testSizeName    = "shmxfer-test-size"
	testCapacity    = 4096
)

// testConfig returns a config with test-only keys and reclaims objects left by previous runs.
func testConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	var err error
	cfg.ContentKey, err = common.KeyForName(testContentName)
	require.NoError(t, err)
	cfg.SizeKey, err = common.KeyForName(testSizeName)
	require.NoError(t, err)
	require.NotEqual(t, cfg.ContentKey, cfg.SizeKey)
	cfg.Capacity = testCapacity
	require.NoError(t, ReclaimFailed(Reclaim(cfg)))
	return cfg
}

// transfer runs one Receive and one Send concurrently.
func transfer(r *Reader, w *Writer, payload []byte) (*Transfer, error) {
	var received *Transfer
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		t, err := r.Receive(ctx)
		received = t
		return err
	})
	g.Go(func() error {
		return w.Send(payload)
	})
	return received, g.Wait()
}

type eventRecorder struct {
	mut    gosync.Mutex
	events []Event
}

func (rec *eventRecorder) observe(ev Event) {
	rec.mut.Lock()
	defer rec.mut.Unlock()
	rec.events = append(rec.events, ev)
}

func (rec *eventRecorder) snapshot() []Event {
	rec.mut.Lock()
	defer rec.mut.Unlock()
	return append([]Event(nil), rec.events...)
}

// index returns the position of the first matching event, or -1.
func indexOf(events []Event, role Role, channel string, op Op) int {
	for i, ev := range events {
		if ev.Role == role && ev.Channel == channel && ev.Op == op {
			return i
		}
	}
	return -1
}

func gateValues(t *testing.T, set *ResourceSet) []int {
	var result []int
	for _, ch := range []*Channel{set.Size, set.Content} {
		v, err := ch.GateValue()
		require.NoError(t, err)
		result = append(result, v)
		v, err = ch.ReplyValue()
		require.NoError(t, err)
		result = append(result, v)
	}
	return result
}

func TestMain(m *testing.M) {
	code := m.Run()
	os.Remove(common.TmpFilename(testContentName))
	os.Remove(common.TmpFilename(testSizeName))
	os.Exit(code)
}
