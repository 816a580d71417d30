// Command levelcheck validates, analyzes and headlessly simulates level
// files without starting the server.
//
//	levelcheck validate levels/*.xml
//	levelcheck analyze --json levels/junction.xml
//	levelcheck simulate --profile lab --ticks 1200 --angle 0,45,0 levels/intro.xml
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/chaojikugua/l-echo/game/config"
	"github.com/chaojikugua/l-echo/game/engine"
	"github.com/chaojikugua/l-echo/game/level"
)

var errChecksFailed = errors.New("level checks failed")

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "levelcheck: %v\n", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "levelcheck",
		Usage:  "validate, analyze and simulate L-Echo level files",
		Writer: w,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "log loader internals"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logrus.SetOutput(os.Stderr)
			if cmd.Bool("debug") {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.WarnLevel)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "parse level files and report load errors",
				ArgsUsage: "<file>...",
				Action:    runValidate,
			},
			{
				Name:      "analyze",
				Usage:     "print reachability, dead ends and goal coverage",
				ArgsUsage: "<file>...",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print reports as JSON"},
					&cli.BoolFlag{Name: "strict", Usage: "fail when a level has warnings"},
				},
				Action: runAnalyze,
			},
			{
				Name:      "simulate",
				Usage:     "run a level headlessly and report goals and deaths",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "profile", Value: "standard", Usage: "tuning profile name"},
					&cli.StringFlag{Name: "tuning", Usage: "tuning YAML file with extra profiles"},
					&cli.IntFlag{Name: "ticks", Value: engine.DefaultFPS * 30, Usage: "ticks to run"},
					&cli.IntFlag{Name: "every", Value: engine.DefaultFPS, Usage: "print a trace line every N ticks (0 disables)"},
					&cli.StringFlag{Name: "angle", Value: "0,0,0", Usage: "camera angle as x,y,z degrees"},
					&cli.BoolFlag{Name: "run", Usage: "start running instead of walking"},
					&cli.BoolFlag{Name: "expect-victory", Usage: "fail unless every goal is reached"},
				},
				Action: runSimulate,
			},
		},
	}
}

func out(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func levelArgs(cmd *cli.Command) ([]string, error) {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: at least one level file is required", cmd.Name)
	}
	return files, nil
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	files, err := levelArgs(cmd)
	if err != nil {
		return err
	}

	w := out(cmd)
	failed := 0
	for _, path := range files {
		l, err := level.Load(path)
		if err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(w, "ok   %s: %q, %d nodes, %d goals\n", path, l.Name(), len(l.All()), l.GoalCount())
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files invalid", errChecksFailed, failed, len(files))
	}
	return nil
}

func runAnalyze(ctx context.Context, cmd *cli.Command) error {
	files, err := levelArgs(cmd)
	if err != nil {
		return err
	}

	w := out(cmd)
	reports := make(map[string]*level.Report, len(files))
	flagged := 0
	for _, path := range files {
		l, err := level.Load(path)
		if err != nil {
			return err
		}
		r := level.Analyze(l)
		reports[path] = r
		if len(r.Warnings) > 0 || !r.Solvable() {
			flagged++
		}
		if !cmd.Bool("json") {
			printReport(w, path, r)
		}
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		var err error
		if len(files) == 1 {
			err = enc.Encode(reports[files[0]])
		} else {
			err = enc.Encode(reports)
		}
		if err != nil {
			return err
		}
	}

	if cmd.Bool("strict") && flagged > 0 {
		return fmt.Errorf("%w: %d of %d levels have warnings", errChecksFailed, flagged, len(files))
	}
	return nil
}

func printReport(w io.Writer, path string, r *level.Report) {
	fmt.Fprintf(w, "=== %s ===\n", path)
	fmt.Fprintf(w, "Name:      %s\n", r.Name)
	fmt.Fprintf(w, "Start:     %s\n", r.Start)
	fmt.Fprintf(w, "Nodes:     %d (%d top level)\n", r.Total, r.TopLevel)
	fmt.Fprintf(w, "Reachable: %d\n", r.Reachable)
	fmt.Fprintf(w, "Goals:     %d declared, %d reachable\n", r.DeclaredGoals, len(r.FlaggedGoals))
	fmt.Fprintf(w, "Solvable:  %t\n", r.Solvable())
	if len(r.DeadEnds) > 0 {
		fmt.Fprintf(w, "Dead ends: %s\n", strings.Join(r.DeadEnds, ", "))
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "⚠️  %s\n", warning)
	}
	fmt.Fprintln(w)
}

func runSimulate(ctx context.Context, cmd *cli.Command) error {
	files, err := levelArgs(cmd)
	if err != nil {
		return err
	}
	if len(files) != 1 {
		return fmt.Errorf("simulate: expected one level file, got %d", len(files))
	}
	path := files[0]

	l, err := level.Load(path)
	if err != nil {
		return err
	}
	tuning, err := resolveTuning(path, cmd.String("tuning"), cmd.String("profile"))
	if err != nil {
		return err
	}
	angle, err := parseAngle(cmd.String("angle"))
	if err != nil {
		return err
	}
	ticks := int(cmd.Int("ticks"))
	if ticks < 1 {
		return fmt.Errorf("simulate: ticks must be positive, got %d", ticks)
	}
	every := int(cmd.Int("every"))

	g, err := engine.NewGame(l, tuning)
	if err != nil {
		return err
	}
	g.SetAngle(angle)
	if cmd.Bool("run") {
		g.StartRunning()
	}

	w := out(cmd)
	fmt.Fprintf(w, "Simulating %s (%s) with profile %s for %d ticks\n", path, l.Name(), g.Tuning().Name, ticks)

	total := simulate(g, ticks, every, func(state *engine.GameState) {
		ch := state.Character
		fmt.Fprintf(w, "tick %6d  %-8s  %s -> %s  goals %d/%d  deaths %d\n",
			state.Tick, ch.Phase, orDash(ch.Current), orDash(ch.Next),
			state.GoalsReached, state.GoalsTotal, ch.Deaths)
	})

	state := g.State()
	fmt.Fprintf(w, "Ran %d ticks: goals %d/%d, deaths %d, respawns %d, victory %t\n",
		total.Ticks, state.GoalsReached, state.GoalsTotal, total.Deaths, total.Respawns, total.Victory)

	if cmd.Bool("expect-victory") && !total.Victory {
		return fmt.Errorf("%w: %s not won after %d ticks (remaining goals: %s)",
			errChecksFailed, path, total.Ticks, strings.Join(state.RemainingGoals, ", "))
	}
	return nil
}

// simulate advances g in chunks of every ticks, calling trace after each
// chunk, and returns the accumulated result
func simulate(g *engine.Game, ticks, every int, trace func(*engine.GameState)) engine.TickResult {
	chunk := ticks
	if every > 0 {
		chunk = every
	}

	var total engine.TickResult
	for total.Ticks < ticks && !total.Victory {
		n := min(chunk, ticks-total.Ticks)
		res := g.Tick(n)
		total.Ticks += res.Ticks
		total.Goals += res.Goals
		total.Deaths += res.Deaths
		total.Respawns += res.Respawns
		total.Victory = res.Victory
		if every > 0 && trace != nil {
			trace(g.State())
		}
		if res.Ticks < n {
			break
		}
	}
	return total
}

// resolveTuning picks the named profile, either built in or from a tuning
// file read through the config manager
func resolveTuning(levelPath, tuningFile, profile string) (engine.Tuning, error) {
	if tuningFile == "" {
		switch profile {
		case "", engine.StandardTuning().Name:
			return engine.StandardTuning(), nil
		case engine.LabTuning().Name:
			return engine.LabTuning(), nil
		}
		return engine.Tuning{}, fmt.Errorf("%w: %s (pass --tuning for custom profiles)", config.ErrProfileNotFound, profile)
	}

	m, err := config.NewManager(filepath.Dir(levelPath), tuningFile)
	if err != nil {
		return engine.Tuning{}, err
	}
	return m.LoadTuning(profile)
}

func parseAngle(s string) (mgl64.Vec3, error) {
	var angle mgl64.Vec3
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return angle, fmt.Errorf("angle %q: expected x,y or x,y,z", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return angle, fmt.Errorf("angle %q: %w", s, err)
		}
		angle[i] = v
	}
	return angle, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
