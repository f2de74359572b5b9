//go:build !windows
// +build !windows

package main

func runElevated() {
	Dief("--elevate is a windows-only option")
}

func hookPipes() {
	// named pipe relaying only exists on windows
}
