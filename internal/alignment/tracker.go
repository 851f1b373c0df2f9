// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package alignment

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/skymount/skymount/internal/celestial"
	"github.com/skymount/skymount/internal/linkproto"
)

// Commander is the subset of *linkproto.Engine the tracker needs. It's
// expressed as an interface so tracker tests can supply a fake instead
// of wiring a real serial link.
type Commander interface {
	TrackCelestial(ctx context.Context, raHours, decDeg float32, r [9]float32, refTimeUnixS uint64, latitudeDeg float32) error
	MoveRelative(ctx context.Context, axis byte, deltaArcsec int32) error
}

const highAltitudeWarningDeg = 80.0

// Tracker recomputes alignment against a fresh reference time and
// drives the mount's celestial-tracking and approximate-goto commands
// through a Commander.
type Tracker struct {
	store    *Store
	observer celestial.Observer
	cmd      Commander
	log      *logrus.Entry
}

// NewTracker returns a Tracker reading points from store and issuing
// commands through cmd for an observer at the given site.
func NewTracker(store *Store, observer celestial.Observer, cmd Commander) *Tracker {
	return &Tracker{
		store:    store,
		observer: observer,
		cmd:      cmd,
		log:      logrus.StandardLogger().WithField("component", "tracker"),
	}
}

// StartTracking snapshots the current UTC as the reference time,
// resolves the alignment matrix against it, and — if the matrix
// survives the accept gate — issues CmdTrackCelestial for (raHours,
// decDeg). It refuses to start, returning the solver's rejection, when
// the alignment doesn't pass.
func (tr *Tracker) StartTracking(ctx context.Context, raHours, decDeg float64) (Result, error) {
	refTime := time.Now().UTC()
	result, err := Solve(tr.store.Points(), refTime)
	if err != nil {
		return result, fmt.Errorf("tracker: alignment not usable: %w", err)
	}

	predictedSky := celestial.SkyUnitVector(raHours, decDeg, refTime, refTime)
	predicted := result.Matrix.Apply(predictedSky)
	predictedAltDeg := math.Asin(clampUnit(predicted.Z)) * 180 / math.Pi
	if predictedAltDeg > highAltitudeWarningDeg {
		tr.log.WithField("predicted_alt_deg", predictedAltDeg).
			Warn("predicted initial mount direction is near zenith")
	}

	err = tr.cmd.TrackCelestial(
		ctx,
		float32(raHours), float32(decDeg),
		result.Matrix.Flat(),
		uint64(refTime.Unix()),
		float32(tr.observer.LatDeg),
	)
	if err != nil {
		return result, fmt.Errorf("tracker: track celestial command failed: %w", err)
	}
	return result, nil
}

// GotoApproximate computes a coarse alt/az delta from the store's first
// recorded point to (raHours, decDeg) and issues it as two relative
// moves. It requires at least one recorded point.
func (tr *Tracker) GotoApproximate(ctx context.Context, raHours, decDeg float64) error {
	points := tr.store.Points()
	if len(points) == 0 {
		return ErrNoReferencePoint
	}
	p1 := points[0]

	refAlt, refAz := celestial.AltAz(float64(p1.RAHours), float64(p1.DecDegrees), p1.CapturedAt, tr.observer.LatDeg, tr.observer.LonDeg)
	targetAlt, targetAz := celestial.AltAz(raHours, decDeg, time.Now().UTC(), tr.observer.LatDeg, tr.observer.LonDeg)

	deltaAltArcsec := (targetAlt - refAlt) * 3600
	deltaAzDeg := wrapSignedDegrees(targetAz - refAz)
	deltaAzArcsec := deltaAzDeg * 3600

	if err := tr.cmd.MoveRelative(ctx, linkproto.AxisX, int32(math.Round(deltaAltArcsec))); err != nil {
		return fmt.Errorf("tracker: goto approximate altitude move: %w", err)
	}
	if err := tr.cmd.MoveRelative(ctx, linkproto.AxisZ, int32(math.Round(deltaAzArcsec))); err != nil {
		return fmt.Errorf("tracker: goto approximate azimuth move: %w", err)
	}
	return nil
}

// wrapSignedDegrees wraps deg into (-180, 180].
func wrapSignedDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg <= -180 {
		deg += 360
	}
	if deg > 180 {
		deg -= 360
	}
	return deg
}
