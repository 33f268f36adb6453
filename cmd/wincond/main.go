// Command wincond is a small demonstration CLI for the window-matching
// rule engine: it loads a YAML ruleset, builds a synthetic window against
// an in-memory X11 mock, and reports which rules match.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rlch/wincond/atoms"
	"github.com/rlch/wincond/condition"
	"github.com/rlch/wincond/fetch"
	"github.com/rlch/wincond/match"
	"github.com/rlch/wincond/ruleset"
	"github.com/rlch/wincond/track"
	"github.com/rlch/wincond/xconn"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "wincond:", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "wincond",
		Usage: "match synthetic windows against a rule file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a .wincond.yaml ruleset; defaults to the nearest one found walking up from the cwd"},
		},
		Commands: []*cli.Command{
			checkCommand(),
			printCommand(),
		},
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "evaluate every rule against a demo window",
		ArgsUsage: "<window-name> <window-class>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 2 {
				return fmt.Errorf("usage: wincond check <window-name> <window-class>")
			}
			log, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			path := cmd.String("config")
			if path == "" {
				found, ok := findConfig(".")
				if !ok {
					return fmt.Errorf("no %s found; pass --config", configFileName)
				}
				path = found
			}

			rules, err := ruleset.Load(path)
			if err != nil {
				return err
			}

			conn := xconn.NewMock()
			cat, err := atoms.New(ctx, conn, log)
			if err != nil {
				return err
			}
			idx := track.New(cat, log)

			for i := range rules {
				if err := idx.Postprocess(ctx, rules[i].Condition); err != nil {
					return err
				}
			}

			fetcher := fetch.New(conn, cat, idx, log)
			win := xconn.WindowID(1)
			state, err := fetcher.Update(ctx, win, win)
			if err != nil {
				return err
			}

			st := &match.State{
				Attrs: match.WindowAttrs{
					Name:       cmd.Args().Get(0),
					ClassG:     cmd.Args().Get(1),
					ClassI:     cmd.Args().Get(1),
					HasWMFrame: true,
				},
				Props:     state,
				Index:     idx,
				Catalogue: cat,
			}

			for _, r := range rules {
				matched := match.Eval(ctx, r.Condition.Root, st)
				fmt.Printf("%-20s %v\t%s\n", r.Name, matched, r.Condition.String())
			}
			return nil
		},
	}
}

func printCommand() *cli.Command {
	return &cli.Command{
		Name:      "print",
		Usage:     "parse a rule expression and print its canonical form",
		ArgsUsage: "<expression>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 1 {
				return fmt.Errorf("usage: wincond print <expression>")
			}
			cond, err := condition.Parse(cmd.Args().Get(0))
			if err != nil {
				return err
			}
			fmt.Println(cond.String())
			return nil
		},
	}
}
