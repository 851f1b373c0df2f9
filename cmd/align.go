// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skymount/skymount/internal/alignment"
	"github.com/skymount/skymount/internal/linkproto"
)

var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Record and solve alignment points",
}

var (
	alignRAHours float64
	alignDecDeg  float64
)

var alignAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record the mount's current encoder position against a known sky position",
	Long: `Center the mount on a known star (manually, before running this
command), then record that correspondence: the mount's current encoder
reading, paired with the star's RA/Dec, at this moment.`,
	RunE: runAlignAdd,
}

func init() {
	alignAddCmd.Flags().Float64Var(&alignRAHours, "ra", 0, "star's right ascension, in hours")
	alignAddCmd.Flags().Float64Var(&alignDecDeg, "dec", 0, "star's declination, in degrees")
	alignCmd.AddCommand(alignAddCmd)
	alignCmd.AddCommand(alignListCmd)
	alignCmd.AddCommand(alignSolveCmd)
	alignCmd.AddCommand(alignExportCmd)
	alignCmd.AddCommand(alignImportCmd)
	rootCmd.AddCommand(alignCmd)
}

func runAlignAdd(c *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	received := make(chan linkproto.PositionEvent, 1)
	eng.OnPosition(func(p linkproto.PositionEvent) {
		select {
		case received <- p:
		default:
		}
	})

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()
	if err := eng.GetPositions(ctx); err != nil {
		return fmt.Errorf("skymount: get positions: %w", err)
	}

	var pos linkproto.PositionEvent
	select {
	case pos = <-received:
	case <-ctx.Done():
		return fmt.Errorf("skymount: timed out waiting for position event")
	}

	store, err := loadAlignmentStore()
	if err != nil {
		return err
	}
	store.Add(alignment.AlignmentPoint{
		RAHours:      float32(alignRAHours),
		DecDegrees:   float32(alignDecDeg),
		MountXArcsec: pos.X,
		MountYArcsec: pos.Y,
		MountZArcsec: pos.Z,
		CapturedAt:   time.Now().UTC(),
	})

	if alignmentFile != "" {
		if err := store.Export(alignmentFile); err != nil {
			return fmt.Errorf("skymount: saving --alignment-file: %w", err)
		}
	}
	fmt.Printf("recorded point %d: RA=%.4fh Dec=%.4f° mount=(%d,%d,%d)\n", store.Len(), alignRAHours, alignDecDeg, pos.X, pos.Y, pos.Z)
	return nil
}

var alignListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded alignment points",
	RunE: func(c *cobra.Command, args []string) error {
		store, err := loadAlignmentStore()
		if err != nil {
			return err
		}
		for i, p := range store.Points() {
			fmt.Printf("%d: RA=%.4fh Dec=%.4f° mount=(%d,%d,%d) at %s\n",
				i, p.RAHours, p.DecDegrees, p.MountXArcsec, p.MountYArcsec, p.MountZArcsec, p.CapturedAt.Format(time.RFC3339))
		}
		return nil
	},
}

var alignSolveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve the current alignment points into a rotation matrix",
	RunE: func(c *cobra.Command, args []string) error {
		store, err := loadAlignmentStore()
		if err != nil {
			return err
		}
		result, err := alignment.Solve(store.Points(), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("skymount: solve: %w", err)
		}
		fmt.Printf("quality=%s avg_residual=%.4f° max_pair_delta=%.4f° active=%v excluded=%v\n",
			result.Quality, result.AvgResidualDeg, result.MaxPairDeltaDeg, result.ActiveIndices, result.ExcludedIndices)
		fmt.Println(result.Matrix)
		return nil
	},
}

var alignExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Write recorded alignment points to a CBOR diagnostic dump",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		store, err := loadAlignmentStore()
		if err != nil {
			return err
		}
		return store.Export(args[0])
	},
}

var alignImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Append alignment points from a CBOR diagnostic dump",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		store, err := loadAlignmentStore()
		if err != nil {
			return err
		}
		n, err := store.Import(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("imported %d points\n", n)
		return nil
	},
}
