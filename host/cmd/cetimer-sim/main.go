package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cetimer/core"
	"cetimer/dtree"
	"cetimer/host/serial"
	"cetimer/host/sim"
)

var (
	rootOpts = struct {
		tree    string
		device  string
		baud    int
		hwFreq  uint32
		verbose bool
	}{}

	rootCmd = &cobra.Command{
		Use:   "cetimer-sim",
		Short: "Run the ARMv7 timer clock-event driver against a simulated counter",
		Long: "cetimer-sim probes ce-armv7-timer nodes from a device tree (.json, .yaml or .dtb)\n" +
			"against a software model of the physical timer and reports the resulting\n" +
			"clock event devices and their expiries.",
		SilenceUsage: true,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootOpts.tree, "dt", "", "device tree file (.json, .yaml, .dtb)")
	flags.StringVar(&rootOpts.device, "device", "", "serial device to mirror the debug log to")
	flags.IntVar(&rootOpts.baud, "baud", 115200, "baud rate of the serial debug device")
	flags.Uint32Var(&rootOpts.hwFreq, "hw-freq", 24000000, "frequency the simulated CNTFRQ reports (0 = unprogrammed)")
	flags.BoolVarP(&rootOpts.verbose, "verbose", "v", false, "print the driver debug log")
	rootCmd.MarkPersistentFlagRequired("dt")

	rootCmd.AddCommand(probeCmd, runCmd, shellCmd)
}

// setup opens the debug sinks, loads the tree and probes it
func setup() (*sim.Bench, func(), error) {
	cleanup := func() {}

	if rootOpts.verbose || rootOpts.device != "" {
		var sink *serial.NativePort
		if rootOpts.device != "" {
			cfg := serial.DefaultConfig(rootOpts.device)
			cfg.Baud = rootOpts.baud
			p, err := serial.Open(cfg)
			if err != nil {
				return nil, cleanup, err
			}
			sink = p
			cleanup = func() { sink.Close() }
		}

		core.SetDebugWriter(func(msg string) {
			if rootOpts.verbose {
				fmt.Fprintln(os.Stderr, msg)
			}
			if sink != nil {
				sink.WriteLine(msg)
			}
		})
		core.SetDebugEnabled(true)
		core.InitAsyncDebug()
		closeSinks := cleanup
		cleanup = func() {
			core.StopAsyncDebug()
			closeSinks()
		}
	}

	nodes, err := dtree.Load(rootOpts.tree)
	if err != nil {
		return nil, cleanup, fmt.Errorf("load %s: %w", rootOpts.tree, err)
	}

	bench, err := sim.NewBench(rootOpts.hwFreq)
	if err != nil {
		return nil, cleanup, err
	}
	if _, err := bench.Probe(nodes); err != nil {
		return nil, cleanup, err
	}
	return bench, cleanup, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
