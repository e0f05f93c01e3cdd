package legacy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aplose/erp-migrate/pkg/common/httpclient"
	"github.com/aplose/erp-migrate/pkg/common/logger"
)

const (
	apiPrefix    = "/api/index.php/"
	apiKeyHeader = "DOLAPIKEY"

	DefaultConnectTimeout = 10 * time.Second
	DefaultReadTimeout    = 30 * time.Second
)

// Client reads resources from a Dolibarr REST API. It must be configured
// with Configure before use and is meant to live for a single import run.
type Client struct {
	http *http.Client

	mu      sync.RWMutex
	baseURL string
	apiKey  string
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = httpclient.New(DefaultConnectTimeout, DefaultReadTimeout)
	}
	return &Client{http: httpClient}
}

// Configure sets the endpoint and credentials for subsequent calls.
func (c *Client) Configure(baseURL, apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	c.apiKey = strings.TrimSpace(apiKey)
}

func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

func (c *Client) credentials() (string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL, c.apiKey
}

// TestConnection probes the thirdparties endpoint. It never returns an error:
// any transport failure or rejected credential reports false. A 404 counts as
// reachable because the API answers that way for an empty collection.
func (c *Client) TestConnection(ctx context.Context) bool {
	base, key := c.credentials()
	if base == "" || key == "" {
		return false
	}
	status, _, err := c.get(ctx, "thirdparties", url.Values{
		"limit":     {"1"},
		"sortfield": {"t.rowid"},
	})
	if err != nil {
		logger.Log.WithError(err).WithField("base_url", base).Warn("legacy connection test failed")
		return false
	}
	return isSuccess(status) || status == http.StatusNotFound
}

// GetList fetches a collection. An {"error": ...} body yields an empty list
// whatever the status code; a bare object yields a single record.
func (c *Client) GetList(ctx context.Context, resource string, params url.Values) ([]Record, error) {
	if base, _ := c.credentials(); base == "" {
		return []Record{}, nil
	}

	status, body, err := c.get(ctx, resource, params)
	if err != nil {
		return nil, &APIError{Resource: resource, Err: err}
	}
	if len(body) == 0 {
		if !isSuccess(status) {
			return nil, &APIError{Resource: resource, StatusCode: status, Err: errUnexpectedStatus}
		}
		return []Record{}, nil
	}

	decoded, err := decode(body)
	if err != nil {
		if !isSuccess(status) {
			return nil, &APIError{Resource: resource, StatusCode: status, Err: errUnexpectedStatus}
		}
		return nil, &APIError{Resource: resource, StatusCode: status, Err: fmt.Errorf("%w: %v", errMalformedBody, err)}
	}

	switch v := decoded.(type) {
	case []interface{}:
		if !isSuccess(status) {
			return nil, &APIError{Resource: resource, StatusCode: status, Err: errUnexpectedStatus}
		}
		out := make([]Record, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, Record(m))
			}
		}
		return out, nil
	case map[string]interface{}:
		if _, hasErr := v["error"]; hasErr {
			logger.Log.WithFields(map[string]interface{}{
				"resource": resource,
				"status":   status,
			}).Debug("legacy api returned an error body, treating as empty")
			return []Record{}, nil
		}
		if !isSuccess(status) {
			return nil, &APIError{Resource: resource, StatusCode: status, Err: errUnexpectedStatus}
		}
		return []Record{Record(v)}, nil
	case nil:
		return []Record{}, nil
	default:
		return nil, &APIError{Resource: resource, StatusCode: status, Err: errMalformedBody}
	}
}

// GetOne fetches a single object. A client-side rejection or an unreadable
// body reports absent; transport failures and server errors are returned.
func (c *Client) GetOne(ctx context.Context, resource string, id int64) (Record, bool, error) {
	if base, _ := c.credentials(); base == "" {
		return nil, false, nil
	}

	path := resource + "/" + strconv.FormatInt(id, 10)
	status, body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, false, &APIError{Resource: path, Err: err}
	}
	if status >= http.StatusInternalServerError {
		return nil, false, &APIError{Resource: path, StatusCode: status, Err: errUnexpectedStatus}
	}
	if !isSuccess(status) || len(body) == 0 {
		return nil, false, nil
	}

	decoded, err := decode(body)
	if err != nil {
		return nil, false, nil
	}
	m, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, false, nil
	}
	if _, hasErr := m["error"]; hasErr {
		return nil, false, nil
	}
	return Record(m), true, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (int, []byte, error) {
	base, key := c.credentials()

	endpoint := base + apiPrefix + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set(apiKeyHeader, key)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, bytes.TrimSpace(body), nil
}

func decode(body []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
