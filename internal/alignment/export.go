// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package alignment

import (
	"fmt"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// cborPoint is the CBOR wire shape for one exported AlignmentPoint.
// Kept distinct from AlignmentPoint so the export format doesn't
// silently change if the in-memory struct ever does.
type cborPoint struct {
	RAHours      float32 `cbor:"ra_hours"`
	DecDegrees   float32 `cbor:"dec_degrees"`
	MountX       int32   `cbor:"mount_x_arcsec"`
	MountY       int32   `cbor:"mount_y_arcsec"`
	MountZ       int32   `cbor:"mount_z_arcsec"`
	CapturedUnix int64   `cbor:"captured_at_unix"`
}

// Export writes the store's points to path as a CBOR diagnostic dump.
// It runs only where an operator names a file: the align export
// command, or align add when --alignment-file is set. Without such a
// path nothing is written, so alignment does not persist across power
// cycles on its own.
func (s *Store) Export(path string) error {
	points := make([]cborPoint, len(s.points))
	for i, p := range s.points {
		points[i] = cborPoint{
			RAHours:      p.RAHours,
			DecDegrees:   p.DecDegrees,
			MountX:       p.MountXArcsec,
			MountY:       p.MountYArcsec,
			MountZ:       p.MountZArcsec,
			CapturedUnix: p.CapturedAt.Unix(),
		}
	}

	data, err := cbor.Marshal(points)
	if err != nil {
		return fmt.Errorf("alignment: encode export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("alignment: write export %s: %w", path, err)
	}
	return nil
}

// Import reads a CBOR diagnostic dump previously written by Export and
// appends its points to the store. Existing points are left untouched.
func (s *Store) Import(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("alignment: read import %s: %w", path, err)
	}

	var points []cborPoint
	if err := cbor.Unmarshal(data, &points); err != nil {
		return 0, fmt.Errorf("alignment: decode import: %w", err)
	}

	for _, p := range points {
		s.Add(AlignmentPoint{
			RAHours:      p.RAHours,
			DecDegrees:   p.DecDegrees,
			MountXArcsec: p.MountX,
			MountYArcsec: p.MountY,
			MountZArcsec: p.MountZ,
			CapturedAt:   time.Unix(p.CapturedUnix, 0).UTC(),
		})
	}
	return len(points), nil
}
