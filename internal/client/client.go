// Package client provides a Go client for the Blogup API.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a Blogup API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

// New creates a new Blogup client.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// User is the public view of an account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post represents a blog post from the API.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAuthenticated reports whether the client holds a token.
func (c *Client) IsAuthenticated() bool {
	return c.Token != ""
}

// doRequest performs an HTTP request, authenticated when the client holds a token.
func (c *Client) doRequest(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return c.HTTPClient.Do(req)
}

// call runs a request and decodes a JSON body into out when out is non-nil.
func (c *Client) call(method, path string, body, out any) error {
	resp, err := c.doRequest(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, respBody)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &APIError{Status: status, Message: msg}
}

// Signup creates an account and stores the issued token on the client.
func (c *Client) Signup(email, password, name string) (string, error) {
	reqBody := map[string]string{"email": email, "password": password}
	if name != "" {
		reqBody["name"] = name
	}
	var result struct {
		JWT string `json:"jwt"`
	}
	if err := c.call(http.MethodPost, "/user/signup", reqBody, &result); err != nil {
		return "", err
	}
	c.Token = result.JWT
	return result.JWT, nil
}

// Signin exchanges credentials for a token and stores it on the client.
func (c *Client) Signin(email, password string) (string, *User, error) {
	reqBody := map[string]string{"email": email, "password": password}
	var result struct {
		JWT  string `json:"jwt"`
		User User   `json:"user"`
	}
	if err := c.call(http.MethodPost, "/user/signin", reqBody, &result); err != nil {
		return "", nil, err
	}
	c.Token = result.JWT
	return result.JWT, &result.User, nil
}

// CreatePost creates a post authored by the signed-in user and returns its id.
func (c *Client) CreatePost(title, content string) (string, error) {
	reqBody := map[string]string{"title": title, "content": content}
	var result struct {
		ID string `json:"id"`
	}
	if err := c.call(http.MethodPost, "/post/blog", reqBody, &result); err != nil {
		return "", err
	}
	return result.ID, nil
}

// UpdatePost replaces the title and content of a post you own.
func (c *Client) UpdatePost(id, title, content string) error {
	reqBody := map[string]string{"id": id, "title": title, "content": content}
	return c.call(http.MethodPut, "/post/blog", reqBody, nil)
}

// GetPost fetches a single post. It returns nil, nil when no post has the id.
func (c *Client) GetPost(id string) (*Post, error) {
	var post *Post
	if err := c.call(http.MethodGet, "/post/"+url.PathEscape(id), nil, &post); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts fetches every post.
func (c *Client) ListPosts() ([]Post, error) {
	var posts []Post
	if err := c.call(http.MethodGet, "/post/blog/bulk", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Health checks that the server and its store are reachable.
func (c *Client) Health() error {
	return c.call(http.MethodGet, "/healthz", nil, nil)
}

// TestHelper provides utilities for creating authenticated clients in tests.
type TestHelper struct {
	BaseURL string
}

// NewTestHelper creates a new test helper for the given base URL.
func NewTestHelper(baseURL string) *TestHelper {
	return &TestHelper{BaseURL: baseURL}
}

// testPassword is the password every TestHelper account is created with.
const testPassword = "password123"

// CreateAuthenticatedClient signs up the given email, or signs in when the
// account already exists, and returns a client holding the token.
func (h *TestHelper) CreateAuthenticatedClient(email string) (*Client, error) {
	c := New(h.BaseURL)
	if _, err := c.Signup(email, testPassword, ""); err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
			return nil, fmt.Errorf("signup: %w", err)
		}
		if _, _, err := c.Signin(email, testPassword); err != nil {
			return nil, fmt.Errorf("signin: %w", err)
		}
	}
	return c, nil
}

// GetToken creates an account (if needed) and returns an access token.
// This is a convenience method for tests that need just the token string.
func (h *TestHelper) GetToken(email string) (string, error) {
	c, err := h.CreateAuthenticatedClient(email)
	if err != nil {
		return "", err
	}
	return c.Token, nil
}
