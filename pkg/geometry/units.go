package geometry

import "math"

const mmPerMil = 0.0254

// MMToMil converts millimetres to whole mils.
func MMToMil(mm float64) int {
	return int(math.Round(mm / mmPerMil))
}

// MilToMM converts mils to millimetres.
func MilToMM(mil float64) float64 {
	return mil * mmPerMil
}

// MMToNanometer converts millimetres to integer nanometres, the unit KiCad
// stores internally.
func MMToNanometer(mm float64) int64 {
	return int64(math.Round(mm * 1e6))
}

// OnGrid reports whether mm is a multiple of grid after conversion to
// nanometres.
func OnGrid(mm, grid float64) bool {
	g := MMToNanometer(grid)
	if g == 0 {
		return true
	}
	return MMToNanometer(mm)%g == 0
}

// MapToGrid snaps mm to the nearest multiple of grid.
func MapToGrid(mm, grid float64) float64 {
	if grid == 0 {
		return mm
	}
	return Round(math.Round(mm/grid)*grid, 6)
}
