package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/uimatch/pkg/by"
	"github.com/devicelab-dev/uimatch/pkg/config"
	"github.com/devicelab-dev/uimatch/pkg/core"
	"github.com/devicelab-dev/uimatch/pkg/device"
	"github.com/devicelab-dev/uimatch/pkg/hierarchy"
)

const stdinPath = "-"

// A page source file changes only when it is rewritten, so the CLI settles faster than
// a live device would.
const (
	cliIdleQuietMs    = 100
	cliPollIntervalMs = 50
)

var namedFlag = &cli.StringFlag{
	Name:  "named",
	Usage: "Use a selector from the config file",
}

var findCommand = &cli.Command{
	Name:      "find",
	Usage:     "Print the elements matching a selector",
	ArgsUsage: "[SELECTOR]",
	Flags: []cli.Flag{
		namedFlag,
		&cli.BoolFlag{
			Name:    "all",
			Aliases: []string{"a"},
			Usage:   "Print every match instead of the first",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output JSON",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Keep re-reading the hierarchy until the element appears",
		},
	},
	Action: runFind,
}

var existsCommand = &cli.Command{
	Name:      "exists",
	Usage:     "Print true if the selector matches",
	ArgsUsage: "[SELECTOR]",
	Flags:     []cli.Flag{namedFlag},
	Action:    runExists,
}

var rowsCommand = &cli.Command{
	Name:  "rows",
	Usage: "Address rows of a list container",
	Description: `Without --text, --desc or --instance the number of rows is printed.

Examples:
  uimatch rows --container '{class: .ListView}' --row '{class: .LinearLayout}'
  uimatch rows --container '{class: .ListView}' --row '{class: .LinearLayout}' --instance 2`,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "container", Usage: "Container selector", Required: true},
		&cli.StringFlag{Name: "row", Usage: "Row selector", Required: true},
		&cli.StringFlag{Name: "text", Usage: "Row whose text, or a descendant's, equals this"},
		&cli.StringFlag{Name: "desc", Usage: "Row whose description, or a descendant's, contains this"},
		&cli.IntFlag{Name: "instance", Usage: "Row at this 0-based position"},
		&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
	},
	Action: runRows,
}

var dumpCommand = &cli.Command{
	Name:  "dump",
	Usage: "Print the hierarchy",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "Output JSON instead of UIAutomator XML"},
	},
	Action: runDump,
}

// openSession loads the config and builds a session over the page source file.
func openSession(c *cli.Context) (*device.Session, *config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, nil, err
	}

	path := c.String("hierarchy")
	if path == "" {
		path = cfg.Hierarchy
	}
	if path == "" {
		return nil, nil, fmt.Errorf("no hierarchy file: use --hierarchy or set hierarchy in the config")
	}

	timeouts := cfg.Timeouts
	if timeouts.IdleQuietMs == 0 {
		timeouts.IdleQuietMs = cliIdleQuietMs
	}
	if timeouts.PollIntervalMs == 0 {
		timeouts.PollIntervalMs = cliPollIntervalMs
	}

	provider, err := hierarchyProvider(c, path)
	if err != nil {
		return nil, nil, err
	}
	s, err := device.New(device.Options{
		Provider: provider,
		Timeouts: timeouts,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := s.LoadScriptWatchers(cfg.Watchers); err != nil {
		return nil, nil, err
	}
	return s, cfg, nil
}

// hierarchyProvider serves path, re-read per query, or stdin read once when path is "-".
func hierarchyProvider(c *cli.Context, path string) (core.Provider, error) {
	if path != stdinPath {
		return &hierarchy.FileProvider{Path: path}, nil
	}
	data, err := io.ReadAll(c.App.Reader)
	if err != nil {
		return nil, fmt.Errorf("read hierarchy from stdin: %w", err)
	}
	roots, err := hierarchy.ParsePageSource(data)
	if err != nil {
		return nil, core.ErrProviderUnavailable.WithCause(fmt.Errorf("parse stdin: %w", err))
	}
	return hierarchy.StaticProvider(roots), nil
}

// selectorArg resolves the selector from --named or the first argument.
func selectorArg(c *cli.Context, cfg *config.Config) (by.Selector, error) {
	if name := c.String("named"); name != "" {
		return cfg.Selector(name)
	}
	if c.NArg() == 0 {
		return by.Selector{}, fmt.Errorf("a selector argument or --named is required")
	}
	return by.Parse([]byte(strings.Join(c.Args().Slice(), " ")))
}

func runFind(c *cli.Context) error {
	s, cfg, err := openSession(c)
	if err != nil {
		return err
	}
	sel, err := selectorArg(c, cfg)
	if err != nil {
		return err
	}

	var nodes []core.Node
	switch {
	case c.Duration("timeout") > 0:
		n, err := s.WaitForObject(context.Background(), sel, c.Duration("timeout"))
		if err != nil {
			return err
		}
		nodes = []core.Node{n}
		if c.Bool("all") {
			if nodes, err = s.FindObjects(sel); err != nil {
				return err
			}
		}
	case c.Bool("all"):
		if nodes, err = s.FindObjects(sel); err != nil {
			return err
		}
	default:
		n, err := s.FindObject(sel)
		if err != nil {
			return err
		}
		if n != nil {
			nodes = []core.Node{n}
		}
	}

	if len(nodes) == 0 {
		return core.ErrElementNotFound.WithMessage("no element matches " + sel.String())
	}
	return printNodes(c.App.Writer, nodes, c.Bool("json"))
}

func runExists(c *cli.Context) error {
	s, cfg, err := openSession(c)
	if err != nil {
		return err
	}
	sel, err := selectorArg(c, cfg)
	if err != nil {
		return err
	}
	ok, err := s.HasObject(sel)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, ok)
	return nil
}

func runRows(c *cli.Context) error {
	s, _, err := openSession(c)
	if err != nil {
		return err
	}
	container, err := by.Parse([]byte(c.String("container")))
	if err != nil {
		return fmt.Errorf("--container: %w", err)
	}
	row, err := by.Parse([]byte(c.String("row")))
	if err != nil {
		return fmt.Errorf("--row: %w", err)
	}

	list := s.Collection(container)
	var n core.Node
	switch {
	case c.IsSet("text"):
		n, err = list.ChildByText(row, c.String("text"))
	case c.IsSet("desc"):
		n, err = list.ChildByDescription(row, c.String("desc"))
	case c.IsSet("instance"):
		n, err = list.ChildByInstance(row, c.Int("instance"))
	default:
		count, err := list.ChildCount(row)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, count)
		return nil
	}
	if err != nil {
		return err
	}
	return printNodes(c.App.Writer, []core.Node{n}, c.Bool("json"))
}

func runDump(c *cli.Context) error {
	s, _, err := openSession(c)
	if err != nil {
		return err
	}
	if !c.Bool("json") {
		return s.DumpHierarchy(c.App.Writer)
	}

	roots, err := s.RootNodes()
	if err != nil {
		return err
	}
	snapshots := make([]*hierarchy.Snapshot, 0, len(roots))
	for _, r := range roots {
		snapshots = append(snapshots, hierarchy.TakeSnapshot(r))
	}
	return writeJSON(c.App.Writer, snapshots)
}

func printNodes(w io.Writer, nodes []core.Node, asJSON bool) error {
	if asJSON {
		infos := make([]*core.ElementInfo, 0, len(nodes))
		for _, n := range nodes {
			infos = append(infos, core.InfoOf(n))
		}
		return writeJSON(w, infos)
	}
	for _, n := range nodes {
		fmt.Fprintln(w, formatNode(n))
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatNode renders one line: class, the identifying attributes, then bounds.
func formatNode(n core.Node) string {
	info := core.InfoOf(n)
	parts := []string{info.Class}
	if info.ID != "" {
		parts = append(parts, fmt.Sprintf("res=%q", info.ID))
	}
	if t, ok := n.Text(); ok && t != "" {
		parts = append(parts, fmt.Sprintf("text=%q", t))
	}
	if info.AccessibilityLabel != "" {
		parts = append(parts, fmt.Sprintf("desc=%q", info.AccessibilityLabel))
	}
	b := info.Bounds
	parts = append(parts, fmt.Sprintf("[%d,%d][%d,%d]", b.X, b.Y, b.X+b.Width, b.Y+b.Height))
	return strings.Join(parts, " ")
}
