// Copyright 2015 Aleksandr Demakin. All rights reserved.

// Package shmxfertest starts helper programs for multi-process tests.
package shmxfertest

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

// TestAppResult is a result of a 'go run' program launch
type TestAppResult struct {
	Output string
	Err    error
}

// StringToBytes takes an input string in a 2-hex-symbol per byte format
// and returns corresponding byte array.
func StringToBytes(input string) ([]byte, error) {
	data, err := hex.DecodeString(input)
	if err != nil {
		return nil, errors.Wrap(err, "invalid byte array")
	}
	return data, nil
}

// BytesToString convert a byte slice into its string representation.
// Each byte is represented as 2 upper-case hex symbols.
func BytesToString(data []byte) string {
	return fmt.Sprintf("%X", data)
}

// launch helpers

func startTestApp(args []string, killChan <-chan bool) (*exec.Cmd, *bytes.Buffer, error) {
	args = append([]string{"run"}, args...)
	cmd := exec.Command("go", args...)
	buff := bytes.NewBuffer(nil)
	cmd.Stderr = buff
	cmd.Stdout = buff
	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}
	if killChan != nil {
		go func() {
			if kill, ok := <-killChan; kill && ok {
				if cmd.ProcessState == nil {
					cmd.Process.Kill()
				}
			}
		}()
	}
	return cmd, buff, nil
}

func waitForCommand(cmd *exec.Cmd, buff *bytes.Buffer) (result TestAppResult) {
	if result.Err = cmd.Wait(); result.Err != nil {
		if exiterr, ok := result.Err.(*exec.ExitError); ok {
			if status, ok := exiterr.Sys().(syscall.WaitStatus); ok {
				result.Err = errors.Errorf("%v, status code = %d", result.Err, status.ExitStatus())
			}
		}
	}
	result.Output = buff.String()
	return
}

// RunTestApp starts a go program via 'go run' and waits for it to finish.
// To kill the process, send to killChan.
func RunTestApp(args []string, killChan <-chan bool) (result TestAppResult) {
	if cmd, buff, err := startTestApp(args, killChan); err == nil {
		result = waitForCommand(cmd, buff)
	} else {
		result.Err = err
	}
	return
}

// RunTestAppAsync starts a go program via 'go run' and returns immediately.
// To kill the process, send to killChan.
// To wait for the program to finish, receive on TestAppResult chan.
func RunTestAppAsync(args []string, killChan <-chan bool) <-chan TestAppResult {
	ch := make(chan TestAppResult, 1)
	if cmd, buff, err := startTestApp(args, killChan); err != nil {
		ch <- TestAppResult{Err: err}
	} else {
		go func() {
			ch <- waitForCommand(cmd, buff)
		}()
	}
	return ch
}

// WaitForAppResultChan waits for a value from ch with a timeout.
func WaitForAppResultChan(ch <-chan TestAppResult, d time.Duration) (TestAppResult, bool) {
	select {
	case value := <-ch:
		return value, true
	case <-time.After(d):
		return TestAppResult{}, false
	}
}
