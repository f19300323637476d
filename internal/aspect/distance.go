// Package aspect computes angular relationships between chart points.
package aspect

import "math"

// AngularDistance returns the shortest separation between two longitudes, in [0, 180].
// Inputs need not be normalized.
func AngularDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		return 360 - d
	}
	return d
}
