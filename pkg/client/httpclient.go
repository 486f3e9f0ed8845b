package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"time"
)

const (
	userIDHeader   = "X-User-ID"
	userRoleHeader = "X-User-Role"
)

type HttpClient struct {
	BaseURL    string
	HTTPClient *http.Client
	headers    map[string]string
}

func NewHttpClient(baseURL string) *HttpClient {
	return &HttpClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		headers: map[string]string{},
	}
}

// As returns a copy of the client that sends the gateway identity headers
// for the given user on every request.
func (c *HttpClient) As(userID, role string) *HttpClient {
	headers := maps.Clone(c.headers)
	if headers == nil {
		headers = map[string]string{}
	}
	headers[userIDHeader] = userID
	headers[userRoleHeader] = role
	return &HttpClient{BaseURL: c.BaseURL, HTTPClient: c.HTTPClient, headers: headers}
}

type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

// DecodeData unwraps the {"data": ...} envelope.
func (r *Response) DecodeData(target any) error {
	envelope := struct {
		Data any `json:"data"`
	}{Data: target}
	return json.Unmarshal(r.Body, &envelope)
}

func (c *HttpClient) GET(path string) (*Response, error) {
	return c.request(http.MethodGet, path, nil, nil)
}

func (c *HttpClient) POST(path string, body any) (*Response, error) {
	return c.request(http.MethodPost, path, body, nil)
}

func (c *HttpClient) PATCH(path string, body any) (*Response, error) {
	return c.request(http.MethodPatch, path, body, nil)
}

func (c *HttpClient) PUT(path string, body any) (*Response, error) {
	return c.request(http.MethodPut, path, body, nil)
}

func (c *HttpClient) DELETE(path string) (*Response, error) {
	return c.request(http.MethodDelete, path, nil, nil)
}

func (c *HttpClient) POSTWithHeaders(path string, body any, headers map[string]string) (*Response, error) {
	return c.request(http.MethodPost, path, body, headers)
}

func (c *HttpClient) PUTRaw(path string, rawBody []byte) (*Response, error) {
	return c.requestRaw(http.MethodPut, path, rawBody, nil)
}

func (c *HttpClient) request(method, path string, body any, headers map[string]string) (*Response, error) {
	var reqBody io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	return c.do(method, path, reqBody, body != nil, headers)
}

func (c *HttpClient) requestRaw(method, path string, rawBody []byte, headers map[string]string) (*Response, error) {
	var reqBody io.Reader
	if rawBody != nil {
		reqBody = bytes.NewBuffer(rawBody)
	}
	return c.do(method, path, reqBody, rawBody != nil, headers)
}

func (c *HttpClient) do(method, path string, reqBody io.Reader, hasBody bool, headers map[string]string) (*Response, error) {
	url := c.BaseURL + path

	req, err := http.NewRequestWithContext(context.Background(), method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		Response: resp,
		Body:     respBody,
	}, nil
}

func (c *HttpClient) WaitForHealthy(maxWait time.Duration) error {
	deadline := time.Now().Add(maxWait)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		resp, err := c.HTTPClient.Get(c.BaseURL + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return nil
		}
		if resp != nil {
			resp.Body.Close()
		}
		<-ticker.C
	}

	return fmt.Errorf("service did not become healthy within %v", maxWait)
}

// GetErrorCode returns the code of an error response body.
func GetErrorCode(resp *Response) string {
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := resp.DecodeJSON(&errResp); err != nil {
		return fmt.Sprintf("failed to unmarshal error: %v", err)
	}
	return errResp.Code
}

func GetErrorMessage(resp *Response) string {
	var errResp struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := resp.DecodeJSON(&errResp); err != nil {
		return fmt.Sprintf("failed to unmarshal error: %v", err)
	}
	if errResp.Message != "" {
		return errResp.Message
	}
	return errResp.Code
}
