// Package main provides the tnn CLI.
//
// Usage:
//
//	tnn [-log-level info] [-log-format text] [-backend cpu] <command> [flags]
//
// Commands:
//
//	version    Show version
//	attend     Run scaled dot-product attention on a fixed example
//	mha        Run multi-head self-attention on random or tokenised input
//	masks      Print look-ahead and padding masks
//	pr         Print precision/recall tables for detections in a JSON file
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tnn-lab/tnn/internal/backend/cpu"
	"github.com/tnn-lab/tnn/internal/backend/webgpu"
	"github.com/tnn-lab/tnn/internal/nn"
	"github.com/tnn-lab/tnn/internal/tensor"
)

const version = "v0.1.0-dev"

var errUsage = errors.New("usage")

// env is shared by every subcommand.
type env struct {
	out     io.Writer
	logger  *slog.Logger
	backend tensor.Backend
}

type command struct {
	name  string
	help  string
	run   func(e *env, args []string) error
	needs bool // needs a compute backend
}

var commands = []command{
	{name: "version", help: "Show version", run: versionCmd},
	{name: "attend", help: "Run scaled dot-product attention on a fixed example", run: attendCmd, needs: true},
	{name: "mha", help: "Run multi-head self-attention on random or tokenised input", run: mhaCmd, needs: true},
	{name: "masks", help: "Print look-ahead and padding masks", run: masksCmd, needs: true},
	{name: "pr", help: "Print precision/recall tables for detections in a JSON file", run: prCmd},
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "tnn: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("tnn", flag.ContinueOnError)
	fs.SetOutput(stderr)
	logLevel := fs.String("log-level", "info", "Log level: debug, info, warn, error")
	logFormat := fs.String("log-format", "text", "Log format: text or json")
	backendName := fs.String("backend", "cpu", "Compute backend: cpu or webgpu")
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger, err := newLogger(stderr, *logLevel, *logFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	nn.SetLogger(logger)

	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	name := fs.Arg(0)
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		e := &env{out: stdout, logger: logger}
		if cmd.needs {
			backend, release, err := openBackend(*backendName, logger)
			if err != nil {
				return err
			}
			defer release()
			e.backend = backend
		}
		return cmd.run(e, fs.Args()[1:])
	}

	fs.Usage()
	return fmt.Errorf("%w: unknown command %q", errUsage, name)
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "tnn %s - attention engine\n\n", version)
	fmt.Fprintln(w, "Usage: tnn [flags] <command> [command flags]")
	fmt.Fprintln(w, "\nCommands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.help)
	}
	fmt.Fprintln(w, "\nFlags:")
	fs.PrintDefaults()
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid -log-level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid -log-format %q: want text or json", format)
	}
}

// openBackend returns the named backend. An unavailable GPU falls back to
// the CPU backend with a warning.
func openBackend(name string, logger *slog.Logger) (tensor.Backend, func(), error) {
	switch name {
	case "cpu":
		return cpu.New(), func() {}, nil
	case "webgpu":
		gpu, err := webgpu.New()
		if err != nil {
			logger.Warn("WebGPU unavailable, using CPU", "err", err)
			return cpu.New(), func() {}, nil
		}
		logger.Debug("using WebGPU backend")
		return gpu, gpu.Release, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q: want cpu or webgpu", name)
	}
}

func versionCmd(e *env, _ []string) error {
	fmt.Fprintf(e.out, "tnn %s\n", version)
	return nil
}
