package ndex

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cellmaps/hierkit/pkg/cache"
	"github.com/cellmaps/hierkit/pkg/hcx"
	"github.com/cellmaps/hierkit/pkg/hierarchy"
	"github.com/cellmaps/hierkit/pkg/interactome"
)

const (
	httpTimeout = 30 * time.Second

	// rawTTL bounds how long fetched network bytes stay in the byte cache.
	rawTTL = 24 * time.Hour

	// decodedEntries bounds the in-process LRU of decoded interactomes.
	decodedEntries = 32
)

// Client talks to one NDEx server. Fetched CX2 bytes pass through an
// optional byte cache shared across processes; decoded interactomes stay
// in a per-client LRU so repeated annotation runs against the same parent
// network skip both the fetch and the decode.
type Client struct {
	host    string
	baseURL string
	http    *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	decoded *lru.Cache[string, *interactome.Network]
}

// ClientOption adjusts a Client during construction.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithCache sets the byte cache for raw CX2 payloads.
func WithCache(bc cache.Cache) ClientOption {
	return func(c *Client) { c.cache = bc }
}

// WithKeyer sets the cache key scheme.
func WithKeyer(k cache.Keyer) ClientOption {
	return func(c *Client) { c.keyer = k }
}

// NewClient creates a client for the given NDEx host. An empty host means
// DefaultHost; a host with an explicit scheme (http://...) is used as-is,
// otherwise https is assumed. Without WithCache, raw payloads are not
// cached across runs.
func NewClient(host string, opts ...ClientOption) *Client {
	if host == "" {
		host = DefaultHost
	}
	baseURL := host
	if !strings.Contains(host, "://") {
		baseURL = "https://" + host
	} else {
		host = host[strings.Index(host, "://")+3:]
	}
	c := &Client{
		host:    host,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeout},
		cache:   cache.NewNullCache(),
		keyer:   cache.NewDefaultKeyer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	// Only errs on non-positive size.
	c.decoded, _ = lru.New[string, *interactome.Network](decodedEntries)
	return c
}

// Host returns the server this client talks to.
func (c *Client) Host() string { return c.host }

func (c *Client) networkURL(id string) string {
	return fmt.Sprintf("%s/v3/networks/%s", c.baseURL, id)
}

// FetchRaw returns the CX2 bytes of the network with the given UUID,
// consulting the byte cache first. Transient failures (connection errors,
// 5xx) are retried with exponential backoff; a 404 maps to ErrNotFound.
func (c *Client) FetchRaw(ctx context.Context, id string) ([]byte, error) {
	if err := ValidateUUID(id); err != nil {
		return nil, err
	}

	key := c.keyer.NetworkKey(c.host, id)
	if data, hit, _ := c.cache.Get(ctx, key); hit {
		return data, nil
	}

	var data []byte
	fetch := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.networkURL(id), nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
		}
		defer resp.Body.Close()

		if err := checkStatus(resp.StatusCode); err != nil {
			return err
		}
		data, err = io.ReadAll(resp.Body)
		return err
	}
	if err := cache.RetryWithBackoff(ctx, fetch); err != nil {
		return nil, fmt.Errorf("fetch network %s from %s: %w", id, c.host, err)
	}

	_ = c.cache.Set(ctx, key, data, rawTTL)
	return data, nil
}

// FetchInteractome fetches and decodes a network as an interactome.
// Decoded networks are memoized in the client's LRU.
func (c *Client) FetchInteractome(ctx context.Context, id string) (*interactome.Network, error) {
	key := c.keyer.NetworkKey(c.host, id)
	if net, ok := c.decoded.Get(key); ok {
		return net, nil
	}

	data, err := c.FetchRaw(ctx, id)
	if err != nil {
		return nil, err
	}
	net, err := hcx.DecodeInteractome(data)
	if err != nil {
		return nil, fmt.Errorf("decode network %s: %w", id, err)
	}

	c.decoded.Add(key, net)
	return net, nil
}

// FetchHierarchy fetches and decodes a network as a hierarchy.
func (c *Client) FetchHierarchy(ctx context.Context, id string) (*hierarchy.Hierarchy, error) {
	data, err := c.FetchRaw(ctx, id)
	if err != nil {
		return nil, err
	}
	h, err := hcx.DecodeHierarchy(data)
	if err != nil {
		return nil, fmt.Errorf("decode network %s: %w", id, err)
	}
	return h, nil
}

// StoreHierarchy uploads a hierarchy as a new CX2 network and returns the
// UUID assigned by the server.
func (c *Client) StoreHierarchy(ctx context.Context, h *hierarchy.Hierarchy) (string, error) {
	data, err := hcx.EncodeHierarchy(h)
	if err != nil {
		return "", err
	}
	return c.store(ctx, data)
}

// StoreInteractome uploads an interactome as a new CX2 network and returns
// the UUID assigned by the server.
func (c *Client) StoreInteractome(ctx context.Context, net *interactome.Network) (string, error) {
	data, err := hcx.EncodeInteractome(net)
	if err != nil {
		return "", err
	}
	return c.store(ctx, data)
}

// store POSTs CX2 bytes and extracts the new network's UUID from the
// Location header the server answers with.
func (c *Client) store(ctx context.Context, data []byte) (string, error) {
	var id string
	post := func() error {
		url := c.baseURL + "/v3/networks"
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return checkStatus(resp.StatusCode)
		}
		_, id, err = ParseNetworkURL(resp.Header.Get("Location"))
		return err
	}
	if err := cache.RetryWithBackoff(ctx, post); err != nil {
		return "", fmt.Errorf("store network on %s: %w", c.host, err)
	}
	return id, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}
