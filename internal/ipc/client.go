package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"

	"github.com/google/uuid"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func newMeta() RequestMeta {
	return RequestMeta{CorrelationID: uuid.NewString()}
}

func (c *Client) call(method string, req, resp any) error {
	return c.client.Call(ServiceName+"."+method, req, resp)
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.call("Status", StatusRequest{RequestMeta: newMeta()}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Enqueue submits payload as a new hit.
func (c *Client) Enqueue(payload string) (*EnqueueResponse, error) {
	var resp EnqueueResponse
	if err := c.call("Enqueue", EnqueueRequest{RequestMeta: newMeta(), Payload: payload}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Peek returns up to limit hits from the head of the queue.
func (c *Client) Peek(limit int) (*PeekResponse, error) {
	var resp PeekResponse
	if err := c.call("Peek", PeekRequest{RequestMeta: newMeta(), Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Clear drops every stored hit.
func (c *Client) Clear() (*ClearResponse, error) {
	var resp ClearResponse
	if err := c.call("Clear", ClearRequest{RequestMeta: newMeta()}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Suspend pauses delivery.
func (c *Client) Suspend() (*SuspendResponse, error) {
	var resp SuspendResponse
	if err := c.call("Suspend", SuspendRequest{RequestMeta: newMeta()}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Resume restarts delivery.
func (c *Client) Resume() (*ResumeResponse, error) {
	var resp ResumeResponse
	if err := c.call("Resume", ResumeRequest{RequestMeta: newMeta()}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Privacy changes the consent state.
func (c *Client) Privacy(status string) (*PrivacyResponse, error) {
	var resp PrivacyResponse
	if err := c.call("Privacy", PrivacyRequest{RequestMeta: newMeta(), Status: status}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DatabaseHealth retrieves detailed database diagnostics.
func (c *Client) DatabaseHealth() (*DatabaseHealthResponse, error) {
	var resp DatabaseHealthResponse
	if err := c.call("DatabaseHealth", DatabaseHealthRequest{RequestMeta: newMeta()}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
