// Command gba runs the headless core for a fixed number of frames, useful
// for smoke-testing the CPU/bus model against a BIOS or test ROM without
// any of the graphics, audio or debugger front-ends the core spec excludes.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/jetsetilly/gba/hardware"
	"github.com/jetsetilly/gba/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "gba:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("gba", flag.ContinueOnError)

	bios := fs.String("bios", "", "path to a BIOS image")
	frames := fs.Int("frames", 1, "number of frames to run before exiting")
	prefDir := fs.String("prefs-dir", ".", "directory holding the preferences file")
	verbose := fs.Bool("verbose", false, "enable verbose CPU logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	con, err := hardware.NewConsole(*prefDir)
	if err != nil {
		return fmt.Errorf("preparing console: %w", err)
	}

	if *verbose {
		_ = con.Instance.Prefs.VerboseLogging.Set(true)
	}

	if *bios != "" {
		data, err := os.ReadFile(*bios)
		if err != nil {
			return fmt.Errorf("loading BIOS: %w", err)
		}
		con.LoadBIOS(data)
	}

	if err := con.Reset(); err != nil {
		return fmt.Errorf("resetting console: %w", err)
	}

	for i := 0; i < *frames; i++ {
		cycles, err := con.RunFrame()
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		logger.Logf("gba", "frame %d: %d cycles", i, cycles)
	}

	logger.Write(os.Stdout)
	return nil
}
