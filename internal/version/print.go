package version

import (
	"fmt"
	"io"
	"os"
)

// FprintVersion writes "<cmd> <import-path> <version>" to w.
func FprintVersion(w io.Writer) {
	fmt.Fprintln(w, os.Args[0], Package(), Version())
}

// PrintVersion writes the version line to standard output.
func PrintVersion() {
	FprintVersion(os.Stdout)
}
