package footprint

import "github.com/nsxbet/klc-reviewer/pkg/geometry"

// Endpoint matching tolerances. Arcs are compared loosely because their end
// points are derived from center and angle.
const (
	lineTolerance = 1e-9
	arcTolerance  = 0.01
)

// UnconnectedItems returns the items that have at least one open end.
//
// Every endpoint is a vertex in a graph; each endpoint-to-endpoint match adds
// an edge. A closed walk leaves every vertex with even degree, so an item is
// open when either of its endpoints has odd degree. Closed shapes and zero
// length items are self loops.
func UnconnectedItems(items []*Graphic) []*Graphic {
	if len(items) == 0 {
		return nil
	}

	degree := make([]int, 2*len(items))
	for i := range degree {
		degree[i] = 1
	}

	for i, gi := range items {
		pi := endpoints(gi)
		if pi[0].Equal(pi[1], 0) {
			degree[2*i]++
			degree[2*i+1]++
		}
		for j := i + 1; j < len(items); j++ {
			gj := items[j]
			pj := endpoints(gj)

			tol := lineTolerance
			if gi.Kind == GraphicArc || gj.Kind == GraphicArc {
				tol = arcTolerance
			}
			for ii := 0; ii < 2; ii++ {
				for jj := 0; jj < 2; jj++ {
					if pi[ii].Equal(pj[jj], tol) {
						degree[2*i+ii]++
						degree[2*j+jj]++
					}
				}
			}
		}
	}

	var bad []*Graphic
	for i, g := range items {
		if degree[2*i]%2 == 1 || degree[2*i+1]%2 == 1 {
			bad = append(bad, g)
		}
	}
	return bad
}

func endpoints(g *Graphic) [2]geometry.Point {
	a, b := g.Endpoints()
	return [2]geometry.Point{a, b}
}
