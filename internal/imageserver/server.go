package imageserver

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

// Source is what a Server exposes over the wire: an ordered extent map plus
// random-access reads on it (spec §6.3). The CLI never implements this
// itself — spawning an image server is out of scope (spec §1) — but tests
// and local development need a Source-backed Server to exercise Client
// against, the way the teacher's storagedriver test suite runs its ipc
// client against an in-process ipc server.
type Source interface {
	Extents() ([]Extent, error)
	ReadAt(p []byte, offset int64) (int, error)
}

// Server answers Client requests on accepted connections. It is a test and
// development fixture, not something the CLI drives in production.
type Server struct {
	source Source

	mu       sync.Mutex
	listener net.Listener
}

func NewServer(source Source) *Server {
	return &Server{source: source}
}

// Serve accepts connections on l until l is closed, handling each on its
// own goroutine. It returns nil when l is closed (the normal shutdown
// path) and any other accept error otherwise.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.handle(conn)
	}
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	dec := gob.NewDecoder(conn)
	enc := gob.NewEncoder(conn)

	for {
		var req request
		if err := dec.Decode(&req); err != nil {
			return
		}

		var resp response
		switch {
		case req.Extents != nil:
			resp.Extents = s.handleExtents()
		case req.Read != nil:
			resp.Read = s.handleRead(req.Read)
		default:
			return
		}

		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

func (s *Server) handleExtents() *ExtentsResponse {
	extents, err := s.source.Extents()
	if err != nil {
		return &ExtentsResponse{Error: err.Error()}
	}
	return &ExtentsResponse{Extents: extents}
}

func (s *Server) handleRead(req *ReadRequest) *ReadResponse {
	buf := make([]byte, req.Length)
	n, err := s.source.ReadAt(buf, req.Offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return &ReadResponse{Error: err.Error()}
	}
	if int64(n) != req.Length {
		// A short read here always means the source ran out of bytes
		// before the requested length was satisfied; never return a
		// truncated buffer silently, the client does not re-check length
		// against what it asked for.
		return &ReadResponse{Error: fmt.Sprintf(
			"short read at offset %d: got %d of %d bytes", req.Offset, n, req.Length)}
	}
	return &ReadResponse{Data: buf[:n]}
}
