// Package cli provides the command-line interface for uimatch.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/uimatch/pkg/config"
	"github.com/devicelab-dev/uimatch/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Config file (default: config.yaml or config.yml in the current directory)",
		EnvVars: []string{"UIMATCH_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "hierarchy",
		Aliases: []string{"f"},
		Usage:   "UIAutomator page source (window_dump.xml) to query, or - for stdin",
		EnvVars: []string{"UIMATCH_HIERARCHY"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"UIMATCH_VERBOSE"},
	},
	&cli.StringFlag{
		Name:  "log-file",
		Usage: "Write the log to this file (default with --verbose: <home>/logs/uimatch.log)",
	},
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "uimatch",
		Usage:   "Query a UI hierarchy with declarative selectors",
		Version: Version,
		Description: `uimatch finds elements in a UIAutomator page source the way a test would
on a live device: selectors, instances, child and descendant constraints, and list rows.

A selector is YAML. A plain string is an exact text match.

Examples:
  uimatch -f window_dump.xml find OK
  uimatch -f window_dump.xml find --all '{class: .Button, enabled: true}'
  uimatch -f window_dump.xml exists '{textMatches: "Row [0-9]+"}'
  uimatch -f window_dump.xml rows --container '{res: "com.app:id/list"}' --row '{class: .LinearLayout}' --text "Row 3"
  uimatch -f window_dump.xml dump --json
  adb exec-out uiautomator dump /dev/tty | uimatch -f - find OK`,
		Flags:     GlobalFlags,
		Writer:    out,
		ErrWriter: out,
		Before:    setupLogging,
		After: func(*cli.Context) error {
			logger.Close()
			return nil
		},
		Commands: []*cli.Command{
			findCommand,
			existsCommand,
			rowsCommand,
			dumpCommand,
		},
	}
}

// defaultLogFile is used when --verbose is set without --log-file.
const defaultLogFile = "uimatch.log"

func setupLogging(c *cli.Context) error {
	logger.SetVerbose(c.Bool("verbose"))
	if path := c.String("log-file"); path != "" {
		return logger.Init(path)
	}
	if !c.Bool("verbose") {
		return nil
	}
	dir := config.GetLogDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	return logger.Init(filepath.Join(dir, defaultLogFile))
}

// Execute runs the CLI.
func Execute() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
