// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package monitor

import (
	"testing"

	"github.com/skymount/skymount/internal/linkproto"
	"github.com/stretchr/testify/require"
)

func TestDashboardModelTracksPositionAndReferenceLoss(t *testing.T) {
	sink := NewDashboardSink()
	m := NewDashboardModel(sink)

	updated, _ := m.Update(eventMsg(Event{Kind: "position", Position: &linkproto.PositionEvent{X: 10, Y: 20, Z: 30}}))
	dm := updated.(dashboardModel)
	require.NotNil(t, dm.lastPosition)
	require.Equal(t, int32(10), dm.lastPosition.x)
	require.Equal(t, 1, dm.eventCount)

	updated, _ = dm.Update(eventMsg(Event{Kind: "reference_lost"}))
	dm = updated.(dashboardModel)
	require.False(t, dm.referenceOK)

	updated, _ = dm.Update(eventMsg(Event{Kind: "status", Status: &linkproto.StatusEvent{Enabled: true}}))
	dm = updated.(dashboardModel)
	require.True(t, dm.referenceOK)
	require.NotNil(t, dm.lastStatus)
}

func TestDashboardSinkDropsWhenChannelFull(t *testing.T) {
	sink := NewDashboardSink()
	for i := 0; i < 1000; i++ {
		sink.Publish(Event{Kind: "position"})
	}
	// Must not block or panic — excess events are simply dropped.
	require.LessOrEqual(t, len(sink.events), cap(sink.events))
}
