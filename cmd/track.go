// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skymount/skymount/internal/alignment"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Slew to and track a celestial target, or approximate-goto before alignment",
}

var (
	trackRAHours float64
	trackDecDeg  float64
)

var trackStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Solve the current alignment and start tracking a target",
	RunE:  runTrackStart,
}

var trackGotoCmd = &cobra.Command{
	Use:   "goto",
	Short: "Issue a coarse alt/az move toward a target using only the first recorded point",
	RunE:  runTrackGoto,
}

func init() {
	for _, c := range []*cobra.Command{trackStartCmd, trackGotoCmd} {
		c.Flags().Float64Var(&trackRAHours, "ra", 0, "target right ascension, in hours")
		c.Flags().Float64Var(&trackDecDeg, "dec", 0, "target declination, in degrees")
	}
	trackCmd.AddCommand(trackStartCmd)
	trackCmd.AddCommand(trackGotoCmd)
	rootCmd.AddCommand(trackCmd)
}

func runTrackStart(c *cobra.Command, args []string) error {
	store, err := loadAlignmentStore()
	if err != nil {
		return err
	}
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	tr := alignment.NewTracker(store, observer(), eng)
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	result, err := tr.StartTracking(ctx, trackRAHours, trackDecDeg)
	if err != nil {
		return fmt.Errorf("skymount: %w", err)
	}
	fmt.Printf("tracking started, alignment quality=%s avg_residual=%.4f°\n", result.Quality, result.AvgResidualDeg)
	return nil
}

func runTrackGoto(c *cobra.Command, args []string) error {
	store, err := loadAlignmentStore()
	if err != nil {
		return err
	}
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	tr := alignment.NewTracker(store, observer(), eng)
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	if err := tr.GotoApproximate(ctx, trackRAHours, trackDecDeg); err != nil {
		return fmt.Errorf("skymount: %w", err)
	}
	fmt.Println("approximate goto issued")
	return nil
}
