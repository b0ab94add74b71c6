//go:build linux

// Real-time scheduling setup for the execution context
//
// The consumer goroutine is pinned to an OS thread which is switched to
// SCHED_FIFO and the process memory is locked to avoid page faults inside
// the dequeue loop. Requires CAP_SYS_NICE (or root); callers treat failure
// as a soft degradation, not a fatal error.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package rt

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DefaultPriority is the SCHED_FIFO priority used when none is configured.
const DefaultPriority = 40

const schedFIFO = 1

type schedParam struct {
	priority int32
}

// LockThread pins the calling goroutine to its OS thread and switches the
// thread to SCHED_FIFO at the given priority. Call from the goroutine that
// runs the execution context, before entering its loop.
func LockThread(priority int) error {
	runtime.LockOSThread()

	if priority <= 0 {
		priority = DefaultPriority
	}

	param := schedParam{priority: int32(priority)}
	tid := unix.Gettid()
	_, _, errno := unix.Syscall(unix.SYS_SCHED_SETSCHEDULER,
		uintptr(tid), uintptr(schedFIFO), uintptr(unsafe.Pointer(&param)))
	if errno != 0 {
		return errno
	}
	return nil
}

// LockMemory locks current and future process memory to keep the execution
// context free of page faults.
func LockMemory() error {
	return unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE)
}
