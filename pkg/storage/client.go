package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/CreonHQ/creon/pkg/errors"
	"github.com/CreonHQ/creon/pkg/logging"
)

// Pinner is the content-addressed storage surface the platform relies on.
// Content identifiers are opaque: the core never interprets their internal
// structure, only round-trips them.
type Pinner interface {
	PinContent(ctx context.Context, name string, data []byte) (string, error)
	PinJSON(ctx context.Context, name string, v interface{}) (string, error)
	Fetch(ctx context.Context, cid string) ([]byte, error)
	Health(ctx context.Context) error
}

// Client pins post payloads through an IPFS Cluster HTTP API and fetches
// them back through the IPFS HTTP API.
type Client struct {
	clusterURL  string
	apiURL      string
	replication int
	httpClient  *http.Client
	logger      *logging.ColoredLogger
}

// Config holds configuration for the storage client.
type Config struct {
	// ClusterAPIURL is the base URL for the IPFS Cluster HTTP API
	// (e.g., "http://localhost:9094"). Defaults to localhost when empty.
	ClusterAPIURL string

	// APIURL is the IPFS HTTP API used for retrieval
	// (e.g., "http://localhost:5001").
	APIURL string

	// Timeout bounds each storage operation. Defaults to 60 seconds.
	Timeout time.Duration

	// ReplicationFactor for pinned payloads. Defaults to 3.
	ReplicationFactor int
}

type addResponse struct {
	Name string `json:"name"`
	Cid  string `json:"cid"`
	Size int64  `json:"size"`
}

// NewClient creates a storage client.
func NewClient(cfg Config, logger *logging.ColoredLogger) *Client {
	clusterURL := cfg.ClusterAPIURL
	if clusterURL == "" {
		clusterURL = "http://localhost:9094"
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = "http://localhost:5001"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	replication := cfg.ReplicationFactor
	if replication == 0 {
		replication = 3
	}

	return &Client{
		clusterURL:  clusterURL,
		apiURL:      apiURL,
		replication: replication,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// Health checks if the cluster API is reachable.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.clusterURL+"/id", nil)
	if err != nil {
		return errors.Wrap(err, "failed to create health check request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewUpstreamUnavailableError("storage", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.NewUpstreamUnavailableError("storage",
			fmt.Errorf("health check failed with status %d", resp.StatusCode))
	}
	return nil
}

// PinContent pins raw payload bytes and returns the content identifier.
func (c *Client) PinContent(ctx context.Context, name string, data []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", errors.Wrap(err, "failed to create form file")
	}
	if _, err := part.Write(data); err != nil {
		return "", errors.Wrap(err, "failed to write payload")
	}
	if err := writer.Close(); err != nil {
		return "", errors.Wrap(err, "failed to close multipart writer")
	}

	addURL := fmt.Sprintf("%s/add?replication-min=%d&replication-max=%d",
		c.clusterURL, c.replication, c.replication)
	req, err := http.NewRequestWithContext(ctx, "POST", addURL, &buf)
	if err != nil {
		return "", errors.Wrap(err, "failed to create add request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewUpstreamUnavailableError("storage", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", errors.NewUpstreamUnavailableError("storage",
			fmt.Errorf("add failed with status %d: %s", resp.StatusCode, string(body)))
	}

	// The cluster streams NDJSON responses. Drain the whole stream so the
	// connection does not close before pinning completes, and keep the
	// last object.
	dec := json.NewDecoder(resp.Body)
	var last addResponse
	var hasResult bool
	for {
		var chunk addResponse
		if err := dec.Decode(&chunk); err != nil {
			if err == io.EOF {
				break
			}
			return "", errors.Wrap(err, "failed to decode add response")
		}
		last = chunk
		hasResult = true
	}
	if !hasResult || last.Cid == "" {
		return "", errors.New("add response missing content identifier")
	}

	c.logger.ComponentDebug(logging.ComponentStorage, "payload pinned",
		zap.String("cid", last.Cid),
		zap.Int("size", len(data)),
	)
	return last.Cid, nil
}

// PinJSON marshals v and pins the resulting document.
func (c *Client) PinJSON(ctx context.Context, name string, v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal document")
	}
	return c.PinContent(ctx, name, data)
}

// Fetch retrieves payload bytes by content identifier.
func (c *Client) Fetch(ctx context.Context, cid string) ([]byte, error) {
	url := fmt.Sprintf("%s/api/v0/cat?arg=%s", c.apiURL, cid)
	req, err := http.NewRequestWithContext(ctx, "POST", url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fetch request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewUpstreamUnavailableError("storage", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NewNotFoundError("content", cid)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.NewUpstreamUnavailableError("storage",
			fmt.Errorf("fetch failed with status %d: %s", resp.StatusCode, string(body)))
	}

	return io.ReadAll(resp.Body)
}
