package playlist

// Viewport is the scrolling region the track rows are drawn in. Offsets and
// heights are in rows of terminal cells. A fixed header of HeaderHeight
// lines covers the top of the viewport.
type Viewport interface {
	ScrollOffset() int
	Height() int
	HeaderHeight() int
	// RowHeight reports the height of row i, or false when the row is not
	// rendered.
	RowHeight(i int) (int, bool)
	ScrollTo(offset int)
}

// ScrollIntoView moves v the least distance needed for row to be fully
// visible below the header. A missing row or an unmeasured viewport leaves
// it untouched.
func ScrollIntoView(v Viewport, row int) {
	if v == nil || row < 0 {
		return
	}
	rowHeight, ok := v.RowHeight(row)
	if !ok || rowHeight <= 0 || v.Height() <= 0 {
		return
	}

	offset := v.ScrollOffset()
	top := rowHeight * row
	if top < offset {
		v.ScrollTo(top)
		return
	}

	bottom := top + rowHeight + v.HeaderHeight()
	if bottom > offset+v.Height() {
		v.ScrollTo(bottom - v.Height())
	}
}
