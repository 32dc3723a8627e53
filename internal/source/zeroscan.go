package source

// deliver hands one just-read buffer to engine, scanning it first so an
// all-zero read buffer goes through UpdateZeros instead of Update (spec
// §4.5 "post-read zero scan"). This is a coarser-grained version of the
// per-block zero detection the engine already does internally (spec §4.3
// "Zero-run detection on a data path"): scanning here avoids even handing
// the zero bytes to the engine's block-partitioning path, which matters
// when the read buffer is much larger than one block.
func deliver(engine Engine, buf []byte) error {
	if isAllZero(buf) {
		return engine.UpdateZeros(uint64(len(buf)))
	}
	return engine.Update(buf)
}

func isAllZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
