package imageserver

import (
	"encoding/gob"
	"errors"
	"fmt"
	"net"
	"sync"
)

// Client is a connection to an already-running image server (spec §6.3).
// It is safe for concurrent use: callers may issue overlapping ReadAt
// calls, each carried on its own dialed connection, bounding concurrency
// themselves (the extent-map driver does this with a semaphore sized to
// queue_depth, spec §4.5(c)).
type Client struct {
	network, address string

	mu   sync.Mutex
	ctrl net.Conn
	ctrlEnc *gob.Encoder
	ctrlDec *gob.Decoder
}

// Dial connects to an image server listening on network/address (for the
// nbd+unix:// CLI form, network is "unix" and address is the socket path
// from spec §6.2).
func Dial(network, address string) (*Client, error) {
	conn, err := net.Dial(network, address)
	if err != nil {
		return nil, fmt.Errorf("dial image server: %w", err)
	}
	return &Client{
		network: network,
		address: address,
		ctrl:    conn,
		ctrlEnc: gob.NewEncoder(conn),
		ctrlDec: gob.NewDecoder(conn),
	}, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctrl.Close()
}

// Extents fetches the full ordered extent map (spec §6.3).
func (c *Client) Extents() ([]Extent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ctrlEnc.Encode(request{Extents: &ExtentsRequest{}}); err != nil {
		return nil, fmt.Errorf("send extents request: %w", err)
	}
	var resp response
	if err := c.ctrlDec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("read extents response: %w", err)
	}
	if resp.Extents == nil {
		return nil, errors.New("image server sent malformed extents response")
	}
	if resp.Extents.Error != "" {
		return nil, errors.New(resp.Extents.Error)
	}
	return resp.Extents.Extents, nil
}

// ReadAt opens its own connection to the server and reads exactly length
// bytes at offset. Each call dials independently so the caller can run many
// ReadAt calls concurrently without serializing on a shared connection;
// the extent-map driver bounds how many run at once (spec §4.5(c)
// "queue_depth").
func (c *Client) ReadAt(offset, length int64) ([]byte, error) {
	conn, err := net.Dial(c.network, c.address)
	if err != nil {
		return nil, fmt.Errorf("dial image server: %w", err)
	}
	defer conn.Close()

	enc := gob.NewEncoder(conn)
	dec := gob.NewDecoder(conn)

	if err := enc.Encode(request{Read: &ReadRequest{Offset: offset, Length: length}}); err != nil {
		return nil, fmt.Errorf("send read request: %w", err)
	}
	var resp response
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.Read == nil {
		return nil, errors.New("image server sent malformed read response")
	}
	if resp.Read.Error != "" {
		return nil, errors.New(resp.Read.Error)
	}
	return resp.Read.Data, nil
}
