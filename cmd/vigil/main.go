// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/vigil-sh/vigil/pkg/config"
	"github.com/vigil-sh/vigil/pkg/guardian"
	"github.com/vigil-sh/vigil/pkg/layers"
	"github.com/vigil-sh/vigil/pkg/memory"
	vigilmcp "github.com/vigil-sh/vigil/pkg/mcp"
	"github.com/vigil-sh/vigil/pkg/notify"
	"github.com/vigil-sh/vigil/pkg/session"
	"github.com/vigil-sh/vigil/pkg/telemetry"
)

const version = "dev"

type globalFlags struct {
	ConfigPath string
	JSON       bool
	Help       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}
	if global.Help || len(args) == 0 {
		printUsage()
		return
	}

	switch cmd := args[0]; cmd {
	case "serve":
		ensureNoArgs(args[1:])
		// Errors surface here so runServe's deferred cleanup has already run.
		if err := runServe(ctx, global); err != nil {
			fatal(err)
		}
	case "validate":
		runValidate(global, args[1:])
	case "check":
		runCheck(global, args[1:])
	case "demo":
		ensureNoArgs(args[1:])
		runDemo(ctx)
	case "help":
		printUsage()
	case "version":
		fmt.Println(version)
	default:
		fatal(fmt.Errorf("unknown command %q", cmd))
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var flags globalFlags

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return flags, args[i+1:], nil
		}
		if !strings.HasPrefix(arg, "-") {
			return flags, args[i:], nil
		}
		switch {
		case arg == "-h" || arg == "--help":
			flags.Help = true
			return flags, nil, nil
		case arg == "--json":
			flags.JSON = true
		case arg == "--config":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for --config")
			}
			flags.ConfigPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			flags.ConfigPath = strings.TrimPrefix(arg, "--config=")
		default:
			return flags, nil, fmt.Errorf("unknown global flag %q", arg)
		}
	}
	return flags, nil, nil
}

// runServe wires the full stack and exposes it as MCP tools on stdio. All
// failures return so the deferred cleanup runs before the process exits.
func runServe(ctx context.Context, global globalFlags) error {
	cfg, err := config.Load(global.ConfigPath)
	if err != nil {
		return err
	}

	logger := telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	shutdown, err := telemetry.InitWithConfig("vigil", version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	metrics, err := telemetry.NewGuardianMetrics()
	if err != nil {
		return err
	}

	storeOpts := []memory.Option{memory.WithGuard(layers.Guard{})}
	if cfg.Memory.Persist {
		persister, err := memory.OpenSQLiteStore(cfg.Memory.Path)
		if err != nil {
			return err
		}
		defer persister.Close()
		storeOpts = append(storeOpts, memory.WithPersister(persister))
	}

	sess := session.New(
		session.WithSink(notify.NewSlogSink(logger)),
		session.WithLogger(logger),
		session.WithMetrics(metrics),
		session.WithMemoryStore(memory.NewStore(storeOpts...)),
	)
	defer sess.Close(context.Background())

	watcher, err := config.NewWatcher(cfg.Layers, config.WithWatchLogger(logger))
	if err != nil {
		return err
	}
	watcher.OnBlocked(func(op layers.Operation, res layers.Result) {
		metrics.RecordBlockedOp(context.Background(), op.Layer.String(), string(op.Kind))
	})
	watcher.Start(ctx)
	defer watcher.Stop()

	logger.Info("vigil serving on stdio", "session_id", sess.ID())
	return vigilmcp.NewServer("vigil", version, sess).ServeStdio()
}

// runValidate parses a layer definition file and reports the verdict.
func runValidate(global globalFlags, args []string) {
	if len(args) != 1 {
		fatal(fmt.Errorf("usage: vigil validate <definition.yaml>"))
	}
	def, err := layers.LoadDefinition(args[0])
	if err != nil {
		fatal(err)
	}
	if global.JSON {
		printJSON(def)
		return
	}
	fmt.Printf("%s: layer %s version %d, %d rules\n",
		args[0], def.TargetLayer(), def.Version, len(def.Rules))
}

// runCheck asks the layer guard about one operation.
func runCheck(global globalFlags, args []string) {
	cmd := flag.NewFlagSet("check", flag.ContinueOnError)
	layerName := cmd.String("layer", "", "Target layer (axioms, purpose, principles, methodology, technical)")
	kindName := cmd.String("kind", "", "Operation kind (read, modify, delete, create)")
	description := cmd.String("description", "", "What the operation would do")
	if err := cmd.Parse(args); err != nil {
		fatal(err)
	}

	layer, ok := layers.Parse(*layerName)
	if !ok {
		fatal(fmt.Errorf("unknown layer %q", *layerName))
	}
	result := layers.Check(layers.Operation{
		Layer:       layer,
		Kind:        layers.OpKind(*kindName),
		Description: *description,
	})

	if global.JSON {
		printJSON(result)
	} else if result.Allowed {
		fmt.Printf("allowed: %s %s\n", *kindName, layer)
	} else {
		fmt.Printf("blocked: %s\n", result.Reason)
	}
	if !result.Allowed {
		os.Exit(1)
	}
}

// runDemo walks one session from natural alignment up to protect and prints
// every notification as it happens.
func runDemo(ctx context.Context) {
	sess := session.New(session.WithSink(notify.NewConsoleSink()))

	sequence := []guardian.Trigger{
		guardian.NaturalAlignment,
		guardian.SlightDrift,
		guardian.BoundaryApproached,
		guardian.ClearViolation,
		guardian.ImminentHarm,
	}
	for _, trigger := range sequence {
		state := sess.Trigger(ctx, trigger)
		fmt.Printf("%-22s -> %s (%s)\n", trigger, state.Level, state.Mode)
	}

	fmt.Println("requesting de-escalation without acknowledgment:")
	sess.Deescalate(ctx, guardian.Flow, false)
	fmt.Println("requesting de-escalation with acknowledgment:")
	state := sess.Deescalate(ctx, guardian.Flow, true)
	fmt.Printf("final level: %s\n", state.Level)
}

func printJSON(value any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		fatal(err)
	}
}

func printUsage() {
	fmt.Print(`Vigil CLI

Usage:
  vigil [global flags] <command> [args]

Global flags:
  --config <path>      Path to vigil.yaml
  --json               JSON output

Commands:
  serve                Expose guardian, memory, and layer tools over MCP stdio
  validate <file>      Validate a mutable layer definition document
  check --layer <l> --kind <k> [--description <text>]
                       Ask the layer guard about one operation
  demo                 Walk one session through the escalation ladder
  version

`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func ensureNoArgs(args []string) {
	if len(args) > 0 {
		fatal(fmt.Errorf("unexpected args: %v", args))
	}
}
