package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cetimer/core"
	"cetimer/host/sim"
)

var (
	runOpts = struct {
		events int
		delta  time.Duration
	}{}

	probeCmd = &cobra.Command{
		Use:   "probe",
		Short: "Probe the device tree and list clock event devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			bench, cleanup, err := setup()
			defer cleanup()
			if err != nil {
				return err
			}
			defer bench.Close()

			bench.Describe(cmd.OutOrStdout())
			return nil
		},
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Program periodic events and report each expiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			bench, cleanup, err := setup()
			defer cleanup()
			if err != nil {
				return err
			}
			defer bench.Close()

			out := cmd.OutOrStdout()
			bench.Describe(out)

			fires, err := bench.Run(runOpts.events, runOpts.delta)
			for _, f := range fires {
				fmt.Fprintf(out, "fire #%d counter=%d t=%v\n", f.Seq, f.Counter, f.Elapsed)
			}
			if err != nil {
				return err
			}

			core.DumpEventRing()
			return nil
		},
	}

	shellCmd = &cobra.Command{
		Use:   "shell",
		Short: "Drive the simulated timer interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			bench, cleanup, err := setup()
			defer cleanup()
			if err != nil {
				return err
			}
			defer bench.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Type 'help' for commands, 'quit' to exit.")

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					return scanner.Err()
				}

				err := bench.Exec(strings.TrimSpace(scanner.Text()), out)
				if errors.Is(err, sim.ErrQuit) {
					return nil
				}
				if err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
				}
			}
		},
	}
)

func init() {
	runCmd.Flags().IntVarP(&runOpts.events, "events", "n", 10, "number of events to program")
	runCmd.Flags().DurationVar(&runOpts.delta, "delta", time.Millisecond, "distance between events")
}
