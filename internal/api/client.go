package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vanta-site/internal/constants"

	"github.com/valyala/fasthttp"
)

// Client is the transport shared by every adapter.
type Client struct {
	client *fasthttp.Client
}

func NewClient() *Client {
	return &Client{
		client: &fasthttp.Client{
			Name:                "vanta-site",
			MaxConnsPerHost:     32,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: time.Minute,
		},
	}
}

type header struct {
	key, value string
}

type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API error: %d", e.Code)
	}
	return fmt.Sprintf("API error: %d %s", e.Code, e.Body)
}

func (c *Client) do(ctx context.Context, method, url string, headers ...header) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	for _, h := range headers {
		req.Header.Set(h.key, h.value)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.ExternalAPITimeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, err
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		body := resp.Body()
		if len(body) > 200 {
			body = body[:200]
		}
		return nil, &StatusError{Code: resp.StatusCode(), Body: string(body)}
	}

	// resp is released on return
	return append([]byte(nil), resp.Body()...), nil
}

func doRequest[T any](ctx context.Context, c *Client, url string, headers ...header) (*T, error) {
	body, err := c.do(ctx, fasthttp.MethodGet, url, headers...)
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

func doText(ctx context.Context, c *Client, url string, headers ...header) (string, error) {
	body, err := c.do(ctx, fasthttp.MethodGet, url, headers...)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
