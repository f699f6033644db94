package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/wippyai/mswasm-runtime/config"
	"github.com/wippyai/mswasm-runtime/hostcall"
	"github.com/wippyai/mswasm-runtime/programs"
	"github.com/wippyai/mswasm-runtime/runtime"
	"github.com/wippyai/mswasm-runtime/tag"
)

// exitTrap is the process status after a trap.
const exitTrap = 134

func main() {
	var (
		configFile  = flag.String("config", "", "Path to mswasm.toml")
		program     = flag.String("program", "", "Program to run")
		tags        = flag.String("tags", "", "Tag strategy override (per-word, packed, disabled)")
		list        = flag.Bool("list", false, "List programs and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		dump        = flag.Bool("dump", false, "Print the segment map after the run")
		snapshot    = flag.String("snapshot", "", "Write a segment snapshot to this file after the run")
		restore     = flag.String("restore", "", "Start from a segment snapshot file")
	)
	flag.Parse()

	cfg, err := loadConfig(*configFile, *tags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *list {
		for _, p := range programs.All() {
			traps := ""
			if p.Traps {
				traps = " (traps)"
			}
			fmt.Printf("  %-16s %s%s\n", p.Name, p.Description, traps)
		}
		return
	}

	// The inspector owns the terminal, so it keeps the no-op loggers.
	if *interactive || (*program == "" && term.IsTerminal(int(os.Stdin.Fd()))) {
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	log, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	runtime.SetLogger(log)
	hostcall.SetLogger(log)

	if *program == "" {
		fmt.Fprintln(os.Stderr, "Usage: mswasm -program <name> [-config mswasm.toml] [-tags strategy] [-dump] [-- args...]")
		fmt.Fprintln(os.Stderr, "       mswasm -list")
		fmt.Fprintln(os.Stderr, "       mswasm -i  (interactive mode)")
		os.Exit(1)
	}

	code, err := run(cfg, *program, flag.Args(), *dump, *snapshot, *restore)
	_ = log.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

func loadConfig(path, tags string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if tags != "" {
		s, err := tag.ParseStrategy(tags)
		if err != nil {
			return nil, err
		}
		cfg.Memory.TagStrategy = s
	}
	return cfg, nil
}

func run(cfg *config.Config, name string, args []string, dump bool, snapshotFile, restoreFile string) (int, error) {
	ctx := context.Background()

	var snap []byte
	if restoreFile != "" {
		var err error
		if snap, err = os.ReadFile(restoreFile); err != nil {
			return 0, fmt.Errorf("read snapshot: %w", err)
		}
	}

	res, err := execute(ctx, cfg, name, args, snap, os.Stdout)
	if err != nil {
		return 0, err
	}
	defer res.inst.Close(ctx)

	if dump {
		fmt.Fprint(os.Stderr, renderSegments(res.inst.Store()))
	}
	if snapshotFile != "" {
		data, err := res.inst.Snapshot()
		if err != nil {
			return 0, fmt.Errorf("snapshot: %w", err)
		}
		if err := os.WriteFile(snapshotFile, data, 0o644); err != nil {
			return 0, fmt.Errorf("write snapshot: %w", err)
		}
	}

	if res.err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", res.err)
		return exitTrap, nil
	}
	return int(res.code), nil
}
