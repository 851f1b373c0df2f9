// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skymount/skymount/internal/linkproto"
)

var axisName string

func axisByte() (byte, error) {
	switch axisName {
	case "x":
		return linkproto.AxisX, nil
	case "y":
		return linkproto.AxisY, nil
	case "z":
		return linkproto.AxisZ, nil
	default:
		return 0, fmt.Errorf("skymount: unknown axis %q (want x, y, or z)", axisName)
	}
}

var moveCmd = &cobra.Command{
	Use:   "move <arcsec>",
	Short: "Drive one axis to a fixed or relative position",
	Args:  cobra.ExactArgs(1),
	RunE:  runMove,
}

var moveRelative bool

func init() {
	moveCmd.Flags().StringVar(&axisName, "axis", "z", "axis to move: x, y, or z")
	moveCmd.Flags().BoolVar(&moveRelative, "relative", false, "interpret the argument as a delta from the current position")
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(getposCmd)
	rootCmd.AddCommand(estopCmd)
}

func runMove(c *cobra.Command, args []string) error {
	var arcsec int64
	if _, err := fmt.Sscanf(args[0], "%d", &arcsec); err != nil {
		return fmt.Errorf("skymount: invalid arcsec value %q: %w", args[0], err)
	}
	axis, err := axisByte()
	if err != nil {
		return err
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	if moveRelative {
		if err := eng.MoveRelative(ctx, axis, int32(arcsec)); err != nil {
			return fmt.Errorf("skymount: move relative: %w", err)
		}
		return nil
	}
	if err := eng.MoveStatic(ctx, axis, int32(arcsec)); err != nil {
		return fmt.Errorf("skymount: move static: %w", err)
	}
	return nil
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Halt all axis motion",
	RunE: func(c *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()
		ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
		defer cancel()
		return eng.Stop(ctx)
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Suspend current motion without clearing it",
	RunE: func(c *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()
		ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
		defer cancel()
		return eng.Pause(ctx)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Continue motion previously suspended by pause",
	RunE: func(c *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()
		ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
		defer cancel()
		return eng.Resume(ctx)
	},
}

var getposCmd = &cobra.Command{
	Use:   "getpos",
	Short: "Request the mount's current axis positions",
	Long: `Request the mount's current axis positions.

The positions themselves arrive asynchronously as an EvtPosition frame;
this command waits for the request to be acknowledged, then prints the
first position event received since it subscribed, just before sending.`,
	RunE: runGetPositions,
}

func runGetPositions(c *cobra.Command, args []string) error {
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

	select {
	case p := <-received:
		fmt.Printf("X=%d Y=%d Z=%d arcsec\n", p.X, p.Y, p.Z)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("skymount: timed out waiting for position event")
	}
}

var estopCmd = &cobra.Command{
	Use:   "estop",
	Short: "Send an immediate, unretried emergency stop",
	RunE: func(c *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()
		return eng.EmergencyStop()
	},
}
