package main

import (
	"fmt"
	"os"

	"github.com/itchio/junction"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	version = "head" // set by command-line on CI release builds
	app     = kingpin.New("junction", "Create, inspect and remove NTFS junction points")

	createCmd = app.Command("create", "Create a junction pointing at a directory")
	deleteCmd = app.Command("delete", "Clear a junction's reparse data, leaving an empty directory")
	checkCmd  = app.Command("check", "Tell whether a path is a junction (exit code 0 if it is, 1 if not)")
	targetCmd = app.Command("target", "Print the directory a junction points to")
)

var appArgs = struct {
	quiet      *bool
	elevate    *bool
	pipeStdout *string
	pipeStderr *string
}{
	app.Flag("quiet", "Only print errors").Short('q').Bool(),
	app.Flag("elevate", "Relaunch through a UAC prompt if access stays denied after the automatic privilege retry").Bool(),
	app.Flag("pipe-stdout", "Named pipe to relay stdout to (used by --elevate relaunches)").Hidden().String(),
	app.Flag("pipe-stderr", "Named pipe to relay stderr to (used by --elevate relaunches)").Hidden().String(),
}

var createArgs = struct {
	path   *string
	target *string
}{
	createCmd.Arg("path", "Where to create the junction (must not exist yet)").Required().String(),
	createCmd.Arg("target", "Directory the junction points to").Required().String(),
}

var deleteArgs = struct {
	path *string
}{
	deleteCmd.Arg("path", "Junction to clear").Required().String(),
}

var checkArgs = struct {
	path *string
}{
	checkCmd.Arg("path", "Path to inspect").Required().String(),
}

var targetArgs = struct {
	path *string
}{
	targetCmd.Arg("path", "Junction to resolve").Required().String(),
}

func main() {
	app.HelpFlag.Short('h')
	app.Version(version)
	app.VersionFlag.Short('V')

	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))
	hookPipes()

	switch cmd {
	case createCmd.FullCommand():
		must(junction.Create(*createArgs.path, *createArgs.target))
		Logf("%s now points to %s", *createArgs.path, *createArgs.target)
	case deleteCmd.FullCommand():
		must(junction.Delete(*deleteArgs.path))
		Logf("%s is a plain directory again", *deleteArgs.path)
	case checkCmd.FullCommand():
		if !junction.Exists(*checkArgs.path) {
			Logf("%s: not a junction", *checkArgs.path)
			os.Exit(1)
		}
		Logf("%s: junction", *checkArgs.path)
	case targetCmd.FullCommand():
		target, err := junction.GetTarget(*targetArgs.path)
		must(err)
		fmt.Fprintln(stdout, target)
	}
}

func must(err error) {
	if err == nil {
		return
	}
	if *appArgs.elevate && junction.IsPermissionDenied(err) {
		runElevated()
	}
	Dief("%s", err)
}
