package footprint

import "github.com/nsxbet/klc-reviewer/pkg/geometry"

// OverlappingCircles returns circles that are exactly duplicated by another
// circle (same center, same point on the circumference).
func OverlappingCircles(circles []*Graphic) []*Graphic {
	var out []*Graphic
	for i, c := range circles {
		for j, c2 := range circles {
			if i == j {
				continue
			}
			if c.Center == c2.Center && c.End == c2.End {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// OverlappingLines returns every item with a straight segment that overlaps a
// segment of another item in the list.
//
// Segments are bucketed by direction so only parallel candidates are
// compared. Two segments overlap when they share both endpoints or when an
// endpoint of one lies strictly inside the other. All pairs are compared
// before anything is reported, so the result does not depend on input order
// and each item appears once, in input order.
func OverlappingLines(items []*Graphic) []*Graphic {
	type segment struct {
		owner int
		seg   Segment
	}

	buckets := make(map[string][]segment)
	var order []string
	for i, g := range items {
		for _, s := range g.Segments() {
			d := geometry.Direction(s.Start, s.End)
			if _, ok := buckets[d]; !ok {
				order = append(order, d)
			}
			buckets[d] = append(buckets[d], segment{owner: i, seg: s})
		}
	}

	marked := make([]bool, len(items))
	for _, d := range order {
		segs := buckets[d]
		for a := 0; a < len(segs); a++ {
			for b := a + 1; b < len(segs); b++ {
				if segs[a].owner == segs[b].owner {
					continue
				}
				if segmentsOverlap(segs[a].seg, segs[b].seg) {
					marked[segs[a].owner] = true
					marked[segs[b].owner] = true
				}
			}
		}
	}

	var out []*Graphic
	for i, g := range items {
		if marked[i] {
			out = append(out, g)
		}
	}
	return out
}

func segmentsOverlap(s1, s2 Segment) bool {
	if sameSegment(s1, s2) {
		return true
	}
	return geometry.IsBetween(s1.Start, s1.End, s2.Start) ||
		geometry.IsBetween(s1.Start, s1.End, s2.End) ||
		geometry.IsBetween(s2.Start, s2.End, s1.Start) ||
		geometry.IsBetween(s2.Start, s2.End, s1.End)
}

func sameSegment(s1, s2 Segment) bool {
	return (s1.Start == s2.Start && s1.End == s2.End) ||
		(s1.Start == s2.End && s1.End == s2.Start)
}
