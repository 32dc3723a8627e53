// Package imageserver defines the wire contract the extent-map driver
// (spec §4.5(c), §6.3) speaks to an external image server over a local
// socket: an ordered extent enumeration plus parallel block reads on the
// data extents. The request/response/error shape is adapted from the
// teacher's storagedriver/ipc package (typed Request/Response structs with
// a serialized remote error), ported from its docker/libchan transport to
// plain encoding/gob over net.Conn — libchan predates Go modules and is
// unmaintained, but the typed-message idiom it established is exactly what
// this protocol needs.
//
// Spawning the server process itself is explicitly out of this project's
// scope (spec §1, §6.3): the client here always dials an already-running
// server, identified by the nbd+unix:///?socket=... URL form from spec
// §6.2.
package imageserver

// Kind classifies one extent (spec §3).
type Kind int

const (
	KindData Kind = iota
	KindZero
	KindHole
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindZero:
		return "zero"
	case KindHole:
		return "hole"
	default:
		return "unknown"
	}
}

// Extent is one contiguous run of a single kind (spec §3).
type Extent struct {
	Offset int64
	Length int64
	Kind   Kind
}

// ExtentsRequest asks the server for the full ordered extent map covering
// the image.
type ExtentsRequest struct{}

// ExtentsResponse carries the extent list, or Error on failure.
type ExtentsResponse struct {
	Extents []Extent
	Error   string
}

// ReadRequest asks the server for the bytes of one data extent's chunk.
type ReadRequest struct {
	Offset int64
	Length int64
}

// ReadResponse carries the requested bytes, or Error on failure.
type ReadResponse struct {
	Data  []byte
	Error string
}

// request is the single envelope type sent over the wire; exactly one of
// its request fields is populated. This mirrors the teacher's ipc.Request
// "Type" discriminator, adapted to a tagged-union-by-nil-check since gob
// cannot encode an interface without registering every concrete type.
type request struct {
	Extents *ExtentsRequest
	Read    *ReadRequest
}

// response is the matching envelope for replies.
type response struct {
	Extents *ExtentsResponse
	Read    *ReadResponse
}
