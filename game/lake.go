package game

import (
	"errors"
	"fmt"
	"sort"

	"uct/searcher"
)

type Tile byte

const (
	Start  Tile = 'S'
	Frozen Tile = 'F'
	Hole   Tile = 'H'
	Goal   Tile = 'G'
)

var ErrInvalidLake = errors.New("invalid lake")

// Presets are the standard FrozenLake maps.
var Presets = map[string][]string{
	"4x4": {
		"SFFF",
		"FHFH",
		"FFFH",
		"HFFG",
	},
	"8x8": {
		"SFFFFFFF",
		"FFFFFFFF",
		"FFFHFFFF",
		"FFFFFHFF",
		"FFFHFFFF",
		"FHHFFFHF",
		"FHFFHFHF",
		"FFFHFFFG",
	},
}

// Lake is a static rectangular grid. Cells are numbered row by row, so the
// cell at (row, col) is row*cols + col.
type Lake struct {
	rows  int
	cols  int
	tiles []Tile
	start int
}

// ParseLake builds a lake from rows of S, F, H and G. Exactly one start is
// required and every row must have the same width.
func ParseLake(rows []string) (*Lake, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty map", ErrInvalidLake)
	}
	l := &Lake{
		rows:  len(rows),
		cols:  len(rows[0]),
		tiles: make([]Tile, 0, len(rows)*len(rows[0])),
		start: -1,
	}
	for r, row := range rows {
		if len(row) != l.cols {
			return nil, fmt.Errorf("%w: row %d has width %d, want %d", ErrInvalidLake, r, len(row), l.cols)
		}
		for c := 0; c < len(row); c++ {
			tile := Tile(row[c])
			switch tile {
			case Start:
				if l.start >= 0 {
					return nil, fmt.Errorf("%w: more than one start", ErrInvalidLake)
				}
				l.start = len(l.tiles)
			case Frozen, Hole, Goal:
			default:
				return nil, fmt.Errorf("%w: unknown tile %q at row %d column %d", ErrInvalidLake, row[c], r, c)
			}
			l.tiles = append(l.tiles, tile)
		}
	}
	if l.start < 0 {
		return nil, fmt.Errorf("%w: no start", ErrInvalidLake)
	}
	return l, nil
}

// PresetLake parses one of the Presets by name.
func PresetLake(name string) (*Lake, error) {
	rows, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown preset %q (known: %v)", ErrInvalidLake, name, PresetNames())
	}
	return ParseLake(rows)
}

func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *Lake) Rows() int {
	return l.rows
}

func (l *Lake) Cols() int {
	return l.cols
}

// Size is the number of cells.
func (l *Lake) Size() int {
	return len(l.tiles)
}

func (l *Lake) Start() int {
	return l.start
}

func (l *Lake) Tile(cell int) Tile {
	return l.tiles[cell]
}

// IsTerminal reports whether an episode ends on the cell.
func (l *Lake) IsTerminal(cell int) bool {
	return l.tiles[cell] == Hole || l.tiles[cell] == Goal
}

// Lines returns the map rows.
func (l *Lake) Lines() []string {
	lines := make([]string, l.rows)
	for r := 0; r < l.rows; r++ {
		b := make([]byte, l.cols)
		for i, t := range l.tiles[r*l.cols : (r+1)*l.cols] {
			b[i] = byte(t)
		}
		lines[r] = string(b)
	}
	return lines
}

// move returns the cell reached from cell in direction; moves into a wall
// leave the position unchanged.
func (l *Lake) move(cell int, direction searcher.Action) int {
	row, col := cell/l.cols, cell%l.cols
	switch direction {
	case Left:
		col = max(col-1, 0)
	case Down:
		row = min(row+1, l.rows-1)
	case Right:
		col = min(col+1, l.cols-1)
	case Up:
		row = max(row-1, 0)
	}
	return row*l.cols + col
}
