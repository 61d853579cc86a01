package game

import (
	"io"
	"strings"

	"uct/searcher"

	"github.com/muesli/termenv"
)

var tileColors = map[Tile]string{
	Start:  "#34d399",
	Frozen: "#e0f2fe",
	Hole:   "#1e3a8a",
	Goal:   "#facc15",
}

const agentColor = "#dc2626"

// Render writes the lake one row per line with the agent's cell highlighted.
// With the termenv.Ascii profile the output is the plain map.
func Render(w io.Writer, lake *Lake, state searcher.State, profile termenv.Profile) error {
	var b strings.Builder
	for cell := 0; cell < lake.Size(); cell++ {
		tile := lake.Tile(cell)
		style := profile.String(string(tile)).Foreground(profile.Color(tileColors[tile]))
		if cell == int(state) {
			style = style.Background(profile.Color(agentColor))
		}
		b.WriteString(style.String())
		if (cell+1)%lake.Cols() == 0 {
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
