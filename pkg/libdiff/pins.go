package libdiff

import "github.com/nsxbet/klc-reviewer/pkg/symbol"

// Breakage ranks how badly a symbol change affects existing schematics.
type Breakage int

const (
	// NotBreaking means every old pin is still where it was.
	NotBreaking Breakage = iota
	// NoConnectBreaking means only no-connect pins moved or disappeared.
	NoConnectBreaking
	// PinsBreaking means a connectable pin moved or disappeared.
	PinsBreaking
)

func (b Breakage) String() string {
	switch b {
	case PinsBreaking:
		return "pins"
	case NoConnectBreaking:
		return "no-connect pins"
	default:
		return "none"
	}
}

// PinChanges counts what happened to the pins of an old symbol in its new
// version.
type PinChanges struct {
	Moved     int
	Missing   int
	NCMoved   int
	NCMissing int
}

// Breakage returns the severity of the pin changes.
func (c PinChanges) Breakage() Breakage {
	switch {
	case c.Moved > 0 || c.Missing > 0:
		return PinsBreaking
	case c.NCMoved > 0 || c.NCMissing > 0:
		return NoConnectBreaking
	default:
		return NotBreaking
	}
}

// ClassifyPins looks every pin of before up by number in after. A moved pin
// only counts as a no-connect move when it is no-connect in both versions.
func ClassifyPins(before, after *symbol.Symbol) PinChanges {
	var c PinChanges
	for _, oldPin := range before.Pins {
		newPin := pinByNumber(after, oldPin.Number)
		if newPin == nil {
			if oldPin.Etype == symbol.PinNoConnect {
				c.NCMissing++
			} else {
				c.Missing++
			}
			continue
		}
		if oldPin.Pos.X != newPin.Pos.X || oldPin.Pos.Y != newPin.Pos.Y {
			if oldPin.Etype == symbol.PinNoConnect && newPin.Etype == symbol.PinNoConnect {
				c.NCMoved++
			} else {
				c.Moved++
			}
		}
	}
	return c
}

func pinByNumber(s *symbol.Symbol, number string) *symbol.Pin {
	for _, p := range s.Pins {
		if p.Number == number {
			return p
		}
	}
	return nil
}
