package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"focusguard/internal/session"
)

// Client talks to the local daemon API.
type Client struct {
	base string
	http *http.Client
}

func NewClient(addr string) *Client {
	return &Client{
		base: "http://" + addr,
		http: &http.Client{Timeout: 5 * time.Second},
	}
}

// State fetches the current composite state.
func (c *Client) State() (session.Result, error) {
	var res session.Result
	resp, err := c.http.Get(c.base + "/v1/state")
	if err != nil {
		return res, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return res, fmt.Errorf("daemon returned %s", resp.Status)
	}
	return res, json.NewDecoder(resp.Body).Decode(&res)
}

// Command posts one command payload ({"type": ..., fields...}).
func (c *Client) Command(payload map[string]any) (session.Result, error) {
	var res session.Result
	b, err := json.Marshal(payload)
	if err != nil {
		return res, err
	}
	resp, err := c.http.Post(c.base+"/v1/command", "application/json", bytes.NewReader(b))
	if err != nil {
		return res, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return res, fmt.Errorf("daemon returned %s", resp.Status)
	}
	return res, json.NewDecoder(resp.Body).Decode(&res)
}
