// Package display holds console presentation helpers: the startup banner
// and human-readable sizes for the run summary.
package display

import (
	"fmt"
	"io"

	"github.com/backmassage/xcassetclean/internal/term"
)

const banner = `__  _____ __ _ ___ ___  ___| |_ ___| | ___  __ _ _ __
\ \/ / __/ _` + "`" + ` / __/ __|/ _ \ __/ __| |/ _ \/ _` + "`" + ` | '_ \
 >  < (_| (_| \__ \__ \  __/ || (__| |  __/ (_| | | | |
/_/\_\___\__,_|___/___/\___|\__\___|_|\___|\__,_|_| |_|`

// PrintBanner writes the ASCII art banner and version line to w, in the
// banner color when colors are enabled.
func PrintBanner(w io.Writer, version string) {
	fmt.Fprintln(w, term.Paint(term.StyleBanner, banner))
	fmt.Fprintf(w, "v%s\n\n", version)
}
