// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmxfer

import (
	"fmt"

	"github.com/nxgtw/shmxfer/internal/common"
	"github.com/nxgtw/shmxfer/shm"
	"github.com/nxgtw/shmxfer/sync"
)

// ipc object kinds, as reported by Reclaim.
const (
	ObjectSemaphore    = "semaphore"
	ObjectSharedMemory = "shared memory"
)

// ReclaimResult is the outcome of removing one ipc object.
type ReclaimResult struct {
	Object string
	Key    Key
	// Removed is true, if the object existed and has been removed.
	Removed bool
	// Err is set, if the object exists, but could not be removed.
	Err error
}

func (r ReclaimResult) String() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("Failed to remove the %s with key %q: %v.", r.Object, fmt.Sprint(r.Key), r.Err)
	case r.Removed:
		return fmt.Sprintf("Removed the %s with key %q.", r.Object, fmt.Sprint(r.Key))
	default:
		return fmt.Sprintf("The %s with key %q doesn't exist.", r.Object, fmt.Sprint(r.Key))
	}
}

// Reclaim removes the gates and segments of both channels, left by a previous run.
// Missing objects are reported as not removed, they are not errors.
func Reclaim(cfg Config) []ReclaimResult {
	log := cfg.logger()
	var results []ReclaimResult
	for _, key := range []Key{cfg.ContentKey, cfg.SizeKey} {
		for _, res := range []ReclaimResult{
			reclaimObject(ObjectSemaphore, key, sync.DestroySemaphore),
			reclaimObject(ObjectSharedMemory, key, shm.DestroySegment),
		} {
			if res.Err != nil {
				log.Error(res.String())
			} else {
				log.Debug(res.String())
			}
			results = append(results, res)
		}
	}
	return results
}

// ReclaimFailed returns the first error among the results.
func ReclaimFailed(results []ReclaimResult) error {
	for _, res := range results {
		if res.Err != nil {
			return res.Err
		}
	}
	return nil
}

func reclaimObject(object string, key Key, destroy func(common.Key) error) ReclaimResult {
	res := ReclaimResult{Object: object, Key: key}
	err := destroy(key)
	switch {
	case err == nil:
		res.Removed = true
	case common.IsNotExist(err):
	default:
		res.Err = err
	}
	return res
}
