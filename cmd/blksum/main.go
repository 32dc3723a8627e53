// Command blksum computes the parallel block-hash checksum (spec §6.2)
// over a file, a pipe, or an image exposed by a running image server.
package main

import "os"

func main() {
	os.Exit(Execute())
}
