//go:build windows
// +build windows

package main

import (
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/itchio/junction/win32"
	"github.com/natefinch/npipe"
)

func relay(listener *npipe.PipeListener, output io.Writer) {
	conn, err := listener.Accept()
	if err != nil {
		return
	}

	io.Copy(output, conn)
}

// runElevated relaunches the current command line through a UAC prompt,
// relaying the elevated child's output over named pipes, then exits with
// the child's exit code. Does not return.
func runElevated() {
	Warnf("access denied, relaunching elevated...")

	self, err := os.Executable()
	if err != nil {
		Dief("%s", err)
	}

	pid := os.Getpid()

	stdoutPath := fmt.Sprintf(`\\.\pipe\junction\%d\stdout`, pid)
	stdoutListener, err := npipe.Listen(stdoutPath)
	if err != nil {
		Dief("%s", err)
	}
	defer stdoutListener.Close()
	go relay(stdoutListener, os.Stdout)

	stderrPath := fmt.Sprintf(`\\.\pipe\junction\%d\stderr`, pid)
	stderrListener, err := npipe.Listen(stderrPath)
	if err != nil {
		Dief("%s", err)
	}
	defer stderrListener.Close()
	go relay(stderrListener, os.Stderr)

	args := []string{"--pipe-stdout", stdoutPath, "--pipe-stderr", stderrPath}
	for _, arg := range os.Args[1:] {
		// The child already runs with full rights; letting it elevate again
		// would loop the UAC prompt forever.
		if arg == "--elevate" {
			continue
		}
		args = append(args, arg)
	}

	wd, err := os.Getwd()
	if err != nil {
		Dief("%s", err)
	}

	exitCode, err := win32.ShellExecuteAndWait("runas", self, makeCmdLine(args), wd, syscall.SW_HIDE)
	if err != nil {
		Dief("%s", err)
	}

	os.Exit(int(exitCode))
}

// hookPipes redirects output to the named pipes handed over by the parent,
// when running as an --elevate relaunch.
func hookPipes() {
	hook := func(namedPath string, fallback io.Writer) io.Writer {
		if namedPath == "" {
			return fallback
		}
		pipe, err := npipe.DialTimeout(namedPath, 1*time.Second)
		if err != nil {
			return fallback
		}
		return pipe
	}

	stdout = hook(*appArgs.pipeStdout, os.Stdout)
	stderr = hook(*appArgs.pipeStderr, os.Stderr)
}

func makeCmdLine(args []string) string {
	var s string
	for _, v := range args {
		if s != "" {
			s += " "
		}
		s += syscall.EscapeArg(v)
	}
	return s
}
