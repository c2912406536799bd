package acetape

import (
	"fmt"
	"io"
)

// hexDump writes p as offset, 16 hex bytes, then the printable characters.
func hexDump(w io.Writer, p []byte) {
	var offset = 0
	var length = len(p)

	for length > 0 {
		var n = min(length, 16)

		fmt.Fprintf(w, "  %03x: ", offset)

		for i := range n {
			fmt.Fprintf(w, " %02x", p[i])
		}

		for i := n; i < 16; i++ {
			fmt.Fprint(w, "   ")
		}

		fmt.Fprint(w, "  ")

		for i := range n {
			if p[i] >= 0x20 && p[i] <= 0x7E {
				fmt.Fprintf(w, "%c", p[i])
			} else {
				fmt.Fprint(w, ".")
			}
		}

		fmt.Fprint(w, "\n")

		p = p[n:]
		offset += n
		length -= n
	}
}
