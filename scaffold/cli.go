package scaffold

import (
	"errors"
	"flag"
	"fmt"
	"io"
)

// Version is printed by --version.
const Version = "0.1.0"

const usage = `Usage: muxsync-init [init] [options]

Writes muxsync starter files into an existing directory.

Options:
`

// Run executes the muxsync-init command line and returns the exit status.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "init" {
		args = args[1:]
	}

	var opts Options
	var version bool
	fs := flag.NewFlagSet("muxsync-init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.ComponentName, "component-name", DefaultComponentName, "component name, used as the Go package name")
	fs.StringVar(&opts.Dir, "dir", DefaultDir, "target directory, must exist")
	fs.BoolVar(&opts.Force, "force", false, "overwrite existing files")
	fs.BoolVar(&opts.SkipConfig, "skip-config", false, "do not write "+ConfigFile)
	fs.BoolVar(&opts.SkipHTTP, "skip-http", false, "do not write "+HTTPFile)
	fs.BoolVar(&opts.SkipMigration, "skip-migration", false, "do not write "+BackfillFile)
	fs.BoolVar(&opts.SkipWebhook, "skip-webhook", false, "do not write "+WebhookFile)
	fs.BoolVar(&version, "version", false, "print the version and exit")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(stdout)
			fs.Usage()
			return 0
		}
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected argument %q\n", fs.Arg(0))
		fs.Usage()
		return 1
	}
	if version {
		fmt.Fprintln(stdout, "muxsync-init", Version)
		return 0
	}

	report, err := Generate(opts, stdout)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	if len(report.Written) == 0 {
		fmt.Fprintln(stdout, "No files changed.")
	}
	fmt.Fprintln(stdout, "\nNext steps:")
	for i, step := range NextSteps(opts) {
		fmt.Fprintf(stdout, "  %d. %s\n", i+1, step)
	}
	return 0
}
