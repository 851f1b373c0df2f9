// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/skymount/skymount/internal/monitor"
)

var monitorWSPort int

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the mount's position, status, and reference-lost events",
	Long: `monitor opens a read-only terminal dashboard fed by the link
engine's events. It never issues commands to the mount.

With --ws-port set, the same events are also broadcast as JSON over a
loopback-bound WebSocket at /events, for a browser-based live view.`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().IntVar(&monitorWSPort, "ws-port", 0, "also broadcast events over a loopback WebSocket at this port (0 disables)")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(c *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	hub := monitor.NewHub()
	dashSink := monitor.NewDashboardSink()
	hub.Attach(dashSink)

	if monitorWSPort != 0 {
		wsSink := monitor.NewWebSocketSink()
		hub.Attach(wsSink)

		ctx, cancel := context.WithCancel(c.Context())
		defer cancel()
		go func() {
			if err := wsSink.ListenAndServe(ctx, monitorWSPort); err != nil && ctx.Err() == nil {
				log.WithError(err).Warn("monitor websocket server exited")
			}
		}()
		fmt.Printf("websocket events at ws://127.0.0.1:%d/events\n", monitorWSPort)
	}

	hub.Wire(eng)

	program := tea.NewProgram(monitor.NewDashboardModel(dashSink))
	_, err = program.Run()
	return err
}
