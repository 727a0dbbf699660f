// Package client talks to the activities API on behalf of the board: it
// fetches the activity set for a set of criteria and submits signups and
// removals.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Shivanand-hulikatti/school-activities/internal/model"
)

// ErrTransport marks failures where no usable response arrived: the request
// could not be sent, or the body was not the expected JSON.
var ErrTransport = errors.New("activities api unreachable")

// APIError is an application error reported by the API: a non-OK status
// with an optional detail message.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("activities api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("activities api: status %d: %s", e.StatusCode, e.Detail)
}

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

// Client is an activities API client. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the API rooted at baseURL. A nil httpClient
// means http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// ActivitiesPath builds the list path for c. Parameters appear in the order
// category, sort, search and are left out when empty.
func ActivitiesPath(c model.Criteria) string {
	var params []string
	if c.Category != "" {
		params = append(params, "category="+encodeComponent(c.Category))
	}
	if c.Sort != "" {
		params = append(params, "sort="+encodeComponent(c.Sort))
	}
	if c.Search != "" {
		params = append(params, "search="+encodeComponent(c.Search))
	}

	path := "/activities"
	if len(params) > 0 {
		path += "?" + strings.Join(params, "&")
	}
	return path
}

// SignupPath builds the signup path for an activity and email.
func SignupPath(activity, email string) string {
	return "/activities/" + encodeComponent(activity) + "/signup?email=" + encodeComponent(email)
}

// UnregisterPath builds the removal path for an activity and email.
func UnregisterPath(activity, email string) string {
	return "/activities/" + encodeComponent(activity) + "/unregister?email=" + encodeComponent(email)
}

// componentUnescaper undoes the parts of url.QueryEscape that differ from a
// browser's encodeURIComponent: spaces are %20 and !'()* stay literal.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent percent-encodes s for use as a path segment or query
// value, producing the same bytes as encodeURIComponent.
func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// Activities fetches the activity set matching c.
func (c *Client) Activities(ctx context.Context, criteria model.Criteria) (*model.ActivitySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+ActivitiesPath(criteria), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}

	var set model.ActivitySet
	if err := c.do(req, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// Signup registers email for activity and returns the server's message.
func (c *Client) Signup(ctx context.Context, activity, email string) (string, error) {
	return c.mutate(ctx, http.MethodPost, SignupPath(activity, email))
}

// Unregister removes email from activity and returns the server's message.
func (c *Client) Unregister(ctx context.Context, activity, email string) (string, error) {
	return c.mutate(ctx, http.MethodDelete, UnregisterPath(activity, email))
}

func (c *Client) mutate(ctx context.Context, method, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}

	var resp model.MessageResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// do sends req and decodes an OK body into dst. A non-OK response with a
// JSON body becomes an *APIError; anything unreadable is ErrTransport.
func (c *Client) do(req *http.Request, dst any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Detail json.RawMessage `json:"detail"`
		}
		if err := json.Unmarshal(body, &e); err != nil {
			return fmt.Errorf("%w: status %d with undecodable body: %v", ErrTransport, resp.StatusCode, err)
		}
		// Only a string detail is shown to users; structured details are dropped.
		var detail string
		_ = json.Unmarshal(e.Detail, &detail)
		return &APIError{StatusCode: resp.StatusCode, Detail: detail}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: decode body: %v", ErrTransport, err)
	}
	return nil
}
