package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/ha1tch/olstar/pkg/fsmfile"
)

var (
	styleTitle  = tcell.StyleDefault.Bold(true).Foreground(tcell.ColorWhite)
	styleHeader = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleShort  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleLong   = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleCursor = tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
)

// tableView is a scrollable terminal view of a grid. The label column stays
// in place while the suffix columns scroll horizontally.
type tableView struct {
	screen tcell.Screen
	grid   fsmfile.Grid
	widths []int

	cursor int // selected row
	top    int // first visible row
	left   int // first visible suffix column
}

const columnGap = 2

func newTableView(screen tcell.Screen, g fsmfile.Grid) *tableView {
	v := &tableView{screen: screen, grid: g, widths: make([]int, len(g.Header))}
	measure := func(cells []string) {
		for c := range v.widths {
			if c < len(cells) {
				if n := runewidth.StringWidth(cells[c]); n > v.widths[c] {
					v.widths[c] = n
				}
			}
		}
	}
	measure(g.Header)
	for _, r := range g.Rows {
		measure(r)
	}
	return v
}

// show takes over the terminal until the user quits.
func (v *tableView) show() error {
	if err := v.screen.Init(); err != nil {
		return fmt.Errorf("initialize terminal: %w", err)
	}
	defer v.screen.Fini()
	v.screen.Clear()
	v.run()
	return nil
}

func (v *tableView) run() {
	for {
		v.draw()
		v.screen.Show()

		switch ev := v.screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			v.screen.Sync()
		case *tcell.EventKey:
			if v.handleKey(ev) {
				return
			}
		}
	}
}

// pageSize is the number of table rows that fit between header and status bar.
func (v *tableView) pageSize() int {
	_, h := v.screen.Size()
	if n := h - 3; n > 0 {
		return n
	}
	return 1
}

func (v *tableView) draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	if w == 0 || h == 0 {
		return
	}

	v.drawString(0, 0, w, v.grid.Title, styleTitle)
	v.drawLine(1, w, v.grid.Header, "", styleHeader)

	page := v.pageSize()
	for i := 0; i < page && v.top+i < len(v.grid.Rows); i++ {
		r := v.top + i
		style, mark := styleLong, " "
		if r < len(v.grid.Short) && v.grid.Short[r] {
			style, mark = styleShort, "*"
		}
		if r == v.cursor {
			style = styleCursor
		}
		v.drawLine(2+i, w, v.grid.Rows[r], mark, style)
	}

	status := fmt.Sprintf(" row %d/%d  column %d/%d  arrows scroll, q quits",
		v.cursor+1, len(v.grid.Rows), v.left+1, max(len(v.widths)-1, 1))
	for x := 0; x < w; x++ {
		v.screen.SetContent(x, h-1, ' ', nil, styleStatus)
	}
	v.drawString(0, h-1, w, status, styleStatus)
}

// drawLine draws one grid line at row y: the mark, the label column and the
// visible suffix columns.
func (v *tableView) drawLine(y, w int, cells []string, mark string, style tcell.Style) {
	v.drawString(0, y, w, mark, style)
	x := 2
	for c := range v.widths {
		if c > 0 && c < v.left+1 {
			continue
		}
		if x >= w {
			return
		}
		cell := ""
		if c < len(cells) {
			cell = cells[c]
		}
		end := x + v.widths[c]
		v.drawString(x, y, min(end, w), cell, style)
		x = end + columnGap
	}
}

// drawString draws s from column x without passing limit and returns the
// column after the last rune.
func (v *tableView) drawString(x, y, limit int, s string, style tcell.Style) int {
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if x+rw > limit {
			break
		}
		v.screen.SetContent(x, y, r, nil, style)
		x += rw
	}
	return x
}

// handleKey moves the cursor and reports whether the view should close.
func (v *tableView) handleKey(ev *tcell.EventKey) bool {
	last := len(v.grid.Rows) - 1
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		v.cursor--
	case tcell.KeyDown:
		v.cursor++
	case tcell.KeyPgUp:
		v.cursor -= v.pageSize()
	case tcell.KeyPgDn:
		v.cursor += v.pageSize()
	case tcell.KeyHome:
		v.cursor = 0
	case tcell.KeyEnd:
		v.cursor = last
	case tcell.KeyLeft:
		v.left--
	case tcell.KeyRight:
		v.left++
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'k':
			v.cursor--
		case 'j':
			v.cursor++
		case 'h':
			v.left--
		case 'l':
			v.left++
		}
	}
	v.cursor = max(0, min(v.cursor, last))
	v.left = max(0, min(v.left, len(v.widths)-2))
	if v.cursor < v.top {
		v.top = v.cursor
	}
	if page := v.pageSize(); v.cursor >= v.top+page {
		v.top = v.cursor - page + 1
	}
	return false
}
