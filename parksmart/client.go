package parksmart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

const DefaultBackend string = "http://localhost:8000"

var log = logrus.StandardLogger()

// Client talks to the parking backend. Every method maps to exactly one
// endpoint; the backend owns all authoritative state (holds, prices,
// captures), the client only reads and requests.
type Client struct {
	httpClient *http.Client
	backend    string
	config     *Config
	configPath string
}

func New(config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	backend := strings.TrimSuffix(config.Backend, "/")
	if backend == "" {
		backend = DefaultBackend
	}
	if _, err := url.Parse(backend); err != nil {
		return nil, fmt.Errorf("invalid backend URL %q: %w", backend, err)
	}
	c := &Client{
		httpClient: &http.Client{},
		backend:    backend,
		config:     config,
	}
	c.httpClient.Transport = apiRoundTripper{
		inner:  http.DefaultTransport,
		client: c,
	}
	return c, nil
}

func (c *Client) SetConfigPath(path string) {
	c.configPath = path
}

func (c *Client) GetConfig() Config {
	return *c.config
}

func (c *Client) Backend() string {
	return c.backend
}

// get performs a GET and decodes the JSON body into out.
func (c *Client) get(path string, query url.Values, out any) error {
	u := c.backend + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	log.Debugf("GET %s", u)
	res, err := c.httpClient.Get(u)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return decode(res, out)
}

// post performs a POST with an optional JSON body and decodes the response
// into out. A nil body sends an empty request.
func (c *Client) post(path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := toJson(body)
		if err != nil {
			return err
		}
		reader = jsonBody
	}
	req, err := http.NewRequest(http.MethodPost, c.backend+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	log.Debugf("POST %s", c.backend+path)
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return decode(res, out)
}

func (c *Client) put(path string, body any, out any) error {
	jsonBody, err := toJson(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPut, c.backend+path, jsonBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	log.Debugf("PUT %s", c.backend+path)
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return decode(res, out)
}

func (c *Client) delete(path string, out any) error {
	req, err := http.NewRequest(http.MethodDelete, c.backend+path, nil)
	if err != nil {
		return err
	}
	log.Debugf("DELETE %s", c.backend+path)
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return decode(res, out)
}

// decode enforces the error convention: any non-2xx status raises an
// APIError carrying the response body text, or a generic message when the
// body is empty.
func decode(res *http.Response, out any) error {
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return newAPIError(res)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func toJson[T any](request T) (io.Reader, error) {
	buffer := bytes.NewBuffer(nil)
	err := json.NewEncoder(buffer).Encode(request)
	return buffer, err
}
