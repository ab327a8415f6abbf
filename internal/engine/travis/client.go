package travis

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"travisconnect/internal/logger"
	"travisconnect/internal/params"
)

// Headers sent with every Travis API request
const (
	UserAgent = "travisconnect/1.0.0"
	MediaType = "application/vnd.travis-ci.2+json"
)

// Kind tells how a request ended
type Kind int

const (
	// Found means the server answered with a 2xx status
	Found Kind = iota
	// Rejected means the server answered with a non 2xx status
	Rejected
	// Unreachable means the request could not be built or sent
	Unreachable
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case Rejected:
		return "rejected"
	default:
		return "unreachable"
	}
}

// Response is the outcome of a single Travis API call
type Response struct {
	Kind       Kind
	StatusCode int
	Body       []byte
	Err        error
}

// Absent reports whether the call produced no usable resource
func (r Response) Absent() bool {
	return r.Kind != Found
}

// Error describes why the response is absent, nil when it is not
func (r Response) Error() error {
	switch r.Kind {
	case Found:
		return nil
	case Rejected:
		return fmt.Errorf("travis api responded with status %d", r.StatusCode)
	default:
		if r.Err == nil {
			return fmt.Errorf("travis api unreachable")
		}
		return fmt.Errorf("travis api unreachable: %w", r.Err)
	}
}

// Client issues authenticated requests against the Travis API.
// Base URL and token are read from the parameters of each call.
type Client struct {
	client *http.Client
}

// NewClient creates a new Travis client using the given HTTP client
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{client: httpClient}
}

// Get fetches a resource relative to the node base URL
func (c *Client) Get(ctx context.Context, p params.Parameters, resource string) Response {
	return c.do(ctx, http.MethodGet, p, resource)
}

// Post sends an empty POST to a resource relative to the node base URL
func (c *Client) Post(ctx context.Context, p params.Parameters, resource string) Response {
	return c.do(ctx, http.MethodPost, p, resource)
}

func (c *Client) do(ctx context.Context, method string, p params.Parameters, resource string) Response {
	baseURL, err := p.Required(ParameterURL)
	if err != nil {
		return Response{Kind: Unreachable, Err: err}
	}
	token, err := p.Required(ParameterToken)
	if err != nil {
		return Response{Kind: Unreachable, Err: err}
	}

	target := resourceURL(baseURL, resource)
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		logger.Warn("Travis API request could not be built", "method", method, "url", target, "error", err)
		return Response{Kind: Unreachable, Err: err}
	}

	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", MediaType)

	logger.Debug("Travis API request", "method", method, "url", target)
	resp, err := c.client.Do(req)
	if err != nil {
		logger.Warn("Travis API request failed", "method", method, "url", target, "error", err)
		return Response{Kind: Unreachable, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn("Failed to read Travis API response", "method", method, "url", target, "error", err)
		return Response{Kind: Unreachable, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("Travis API request rejected", "method", method, "url", target, "status", resp.Status)
		return Response{Kind: Rejected, StatusCode: resp.StatusCode, Body: body}
	}

	return Response{Kind: Found, StatusCode: resp.StatusCode, Body: body}
}

// resourceURL joins the base URL and a resource path with exactly one slash
func resourceURL(baseURL, resource string) string {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL + strings.TrimPrefix(resource, "/")
}
