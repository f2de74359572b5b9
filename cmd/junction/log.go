package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Swapped for named pipes when running as an --elevate relaunch.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Logf prints an informational line, unless --quiet.
func Logf(format string, args ...interface{}) {
	if *appArgs.quiet {
		return
	}
	fmt.Fprintf(stdout, "%s\n", fmt.Sprintf(format, args...))
}

// Warnf prints a warning line to stderr.
func Warnf(format string, args ...interface{}) {
	fmt.Fprintf(stderr, "%s\n", color.YellowString(fmt.Sprintf(format, args...)))
}

// Dief prints an error and exits with a non-zero status.
func Dief(format string, args ...interface{}) {
	fmt.Fprintf(stderr, "%s\n", color.RedString(fmt.Sprintf(format, args...)))
	os.Exit(2)
}
