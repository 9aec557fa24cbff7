package display

import (
	"fmt"
	"io"

	"github.com/backmassage/muxwatch/internal/term"
)

const banner = ` __  __            __      __    _       _
|  \/  |_   ___  __\ \    / /_ _| |_ ___| |__
| |\/| | | | \ \/ / \ \/\/ / _` + "`" + ` |  _/ __| '_ \
| |  | | |_| |>  <   \_/\_/\__,_|\__\__|_| |_|
|_|  |_|\__,_/_/\_\
`

// PrintBanner writes the startup banner followed by the version line.
func PrintBanner(w io.Writer, version string) {
	fmt.Fprint(w, term.Paint(term.Magenta, banner))
	fmt.Fprintf(w, "  muxwatch %s\n\n", version)
}
