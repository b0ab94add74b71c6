//go:build !linux

// Real-time scheduling stubs for non-Linux development hosts
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package rt

import "runtime"

// DefaultPriority is accepted for interface parity; only Linux honors it.
const DefaultPriority = 40

// LockThread pins the calling goroutine to its OS thread. Scheduling class
// changes are Linux-only.
func LockThread(priority int) error {
	runtime.LockOSThread()
	return nil
}

// LockMemory is a no-op off Linux.
func LockMemory() error {
	return nil
}
