// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/skymount/skymount/internal/alignment"
	"github.com/skymount/skymount/internal/celestial"
	"github.com/skymount/skymount/internal/linkproto"
	"github.com/skymount/skymount/internal/transport"
)

var (
	portName string
	baudRate int

	latDeg float64
	lonDeg float64

	alignmentFile string
	verbose       bool
)

var log = logrus.StandardLogger()

var rootCmd = &cobra.Command{
	Use:   "skymount",
	Short: "Control and align a motorized alt-az telescope mount",
	Long: `skymount talks to an alt-az telescope mount controller over a
serial link, issuing motion commands and building a two-star (or
N-star) alignment solution from observed sky positions.

Connection:
  --port /dev/ttyUSB0 [--baud 9600]
If --port is omitted, skymount probes the usual fixed device paths and
falls back to a /dev/ttyUSB* glob.

Site coordinates (--lat, --lon) are read by the track commands, which
relate sky coordinates to the mount's alt/az frame; both default to 0
and are not checked for being set. align does not use them.`,
	Version:           "0.1.0",
	PersistentPreRunE: configureLogging,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "serial port device (auto-probed if empty)")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", transport.DefaultBaudRate, "baud rate")
	rootCmd.PersistentFlags().Float64Var(&latDeg, "lat", 0, "observer latitude in degrees")
	rootCmd.PersistentFlags().Float64Var(&lonDeg, "lon", 0, "observer longitude in degrees")
	rootCmd.PersistentFlags().StringVar(&alignmentFile, "alignment-file", "", "CBOR diagnostic dump to import alignment points from at startup")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func configureLogging(*cobra.Command, []string) error {
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// observer returns the site coordinates supplied on the command line.
func observer() celestial.Observer {
	return celestial.Observer{LatDeg: latDeg, LonDeg: lonDeg}
}

// openEngine resolves the serial port (auto-probing if --port wasn't
// given), opens it, and wraps it in a protocol engine.
func openEngine() (*linkproto.Engine, error) {
	path := portName
	if path == "" {
		found, err := transport.Discover()
		if err != nil {
			return nil, fmt.Errorf("skymount: %w", err)
		}
		path = found
		log.WithField("port", path).Info("auto-discovered serial port")
	}

	tr, err := transport.Open(path, baudRate)
	if err != nil {
		return nil, fmt.Errorf("skymount: %w", err)
	}

	eng := linkproto.NewEngine(tr, linkproto.WithLogger(log))
	return eng, nil
}

// loadAlignmentStore returns a Store, importing from --alignment-file
// first if one was given. A missing or unreadable file is fatal here —
// the operator asked for it explicitly.
func loadAlignmentStore() (*alignment.Store, error) {
	store := alignment.NewStore()
	if alignmentFile == "" {
		return store, nil
	}
	n, err := store.Import(alignmentFile)
	if err != nil {
		return nil, fmt.Errorf("skymount: loading --alignment-file: %w", err)
	}
	log.WithField("count", n).WithField("file", alignmentFile).Info("imported alignment points")
	return store, nil
}
