package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/denizsincar29/keyplayer/httpapi"
)

// apiClient talks to a running keyplayer server.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(base string) *apiClient {
	return &apiClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

type apiMessage struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (c *apiClient) Play(ctx context.Context, req httpapi.PlayRequest) (string, error) {
	var msg apiMessage
	if err := c.do(ctx, http.MethodPost, "/api/play", req, &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

func (c *apiClient) Stop(ctx context.Context) (string, error) {
	var msg apiMessage
	if err := c.do(ctx, http.MethodPost, "/api/stop", nil, &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

func (c *apiClient) Status(ctx context.Context) (bool, error) {
	var body struct {
		IsPlaying bool `json:"is_playing"`
	}
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &body)
	return body.IsPlaying, err
}

func (c *apiClient) KeyMapping(ctx context.Context) (map[string]string, error) {
	var body struct {
		Mapping map[string]string `json:"mapping"`
	}
	err := c.do(ctx, http.MethodGet, "/api/key-mapping", nil, &body)
	return body.Mapping, err
}

func (c *apiClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var msg apiMessage
		if json.NewDecoder(resp.Body).Decode(&msg) == nil && msg.Detail != "" {
			return fmt.Errorf("server: %s (%d)", msg.Detail, resp.StatusCode)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
