package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/1broseidon/winmgr/internal/daemon"
	"github.com/1broseidon/winmgr/internal/geometry"
)

// Client handles IPC communication with the daemon
type Client struct {
	endpoint string
	timeout  time.Duration
}

// NewClient creates a client for the default endpoint.
func NewClient() *Client {
	endpoint, err := DefaultEndpoint()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		endpoint = ""
	}
	return NewClientFor(endpoint)
}

// NewClientFor creates a client for an explicit socket path or pipe name.
func NewClientFor(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		timeout:  2 * requestTimeout,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := dial(c.endpoint, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) call(cmd CommandType, payload any, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = raw
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Reload asks the daemon to re-read its configuration.
func (c *Client) Reload() (*daemon.ReloadResult, error) {
	var res daemon.ReloadResult
	if err := c.call(CommandReload, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*daemon.Status, error) {
	var status daemon.Status
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListKeybinds retrieves the live hotkey registrations.
func (c *Client) ListKeybinds() ([]daemon.Binding, error) {
	var binds []daemon.Binding
	if err := c.call(CommandListKeybinds, nil, &binds); err != nil {
		return nil, err
	}
	return binds, nil
}

// ApplyLayout moves the daemon's current foreground window to layout.
func (c *Client) ApplyLayout(layout geometry.Layout) (*AppliedData, error) {
	var data AppliedData
	if err := c.call(CommandApplyLayout, PayloadFor(layout), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
