package tui

// rect is a cell rectangle; X and Y are zero-based.
type rect struct {
	X, Y, W, H int
}

// constraint sizes one slot of a vertical stack. fill slots share whatever
// rows the fixed slots leave over.
type constraint struct {
	length int
	fill   bool
}

func length(n int) constraint { return constraint{length: n} }
func fill() constraint        { return constraint{fill: true} }

// splitVertical stacks constraints top to bottom inside area. Fixed slots
// are placed first-come; once the area is exhausted later slots get zero
// height. Leftover rows are split evenly between fill slots, the first ones
// taking the remainder.
func splitVertical(area rect, constraints []constraint) []rect {
	out := make([]rect, len(constraints))

	fixed, fills := 0, 0
	for _, c := range constraints {
		if c.fill {
			fills++
		} else {
			fixed += max(c.length, 0)
		}
	}
	spare := max(area.H-fixed, 0)

	y := area.Y
	bottom := area.Y + max(area.H, 0)
	fillIdx := 0
	for i, c := range constraints {
		h := max(c.length, 0)
		if c.fill {
			h = spare / fills
			if fillIdx < spare%fills {
				h++
			}
			fillIdx++
		}
		h = min(h, bottom-y)
		out[i] = rect{X: area.X, Y: y, W: area.W, H: h}
		y += h
	}
	return out
}

// inset trims margin cells from the left and right edges.
func inset(r rect, margin int) rect {
	w := r.W - 2*margin
	if w < 0 {
		return rect{X: r.X + r.W/2, Y: r.Y, W: 0, H: r.H}
	}
	return rect{X: r.X + margin, Y: r.Y, W: w, H: r.H}
}
