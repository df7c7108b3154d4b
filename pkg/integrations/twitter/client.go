package twitter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/impactgraph/pkg/cache"
	"github.com/matzehuels/impactgraph/pkg/entity"
	"github.com/matzehuels/impactgraph/pkg/integrations"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.twitter.com"

const defaultMaxPages = 15

// Options configures a Client.
type Options struct {
	Token   string
	BaseURL string
	TTL     time.Duration
	// Refresh bypasses cached responses.
	Refresh bool
	// MaxPages bounds cursor pagination per id list. Zero means 15.
	MaxPages int
}

// Client looks up profiles and relationships.
type Client struct {
	*integrations.Client
	baseURL  string
	refresh  bool
	maxPages int
}

// NewClient creates a client that caches responses in c.
func NewClient(c cache.Cache, opts Options) *Client {
	headers := map[string]string{"Accept": "application/json"}
	if opts.Token != "" {
		headers["Authorization"] = "Bearer " + opts.Token
	}
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	return &Client{
		Client:   integrations.NewClient(c, "twitter", opts.TTL, headers),
		baseURL:  baseURL,
		refresh:  opts.Refresh,
		maxPages: maxPages,
	}
}

// LookupUser returns the profile of handle.
func (c *Client) LookupUser(ctx context.Context, handle string) (entity.Profile, error) {
	key := "user:" + strings.ToLower(handle)

	var p entity.Profile
	err := c.Cached(ctx, key, c.refresh, &p, func() error {
		url := fmt.Sprintf("%s/1.1/users/show.json?screen_name=%s", c.baseURL, integrations.URLEncode(handle))
		if err := c.Get(ctx, url, &p); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: user %s", err, handle)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FriendIDs returns the ids that id follows.
func (c *Client) FriendIDs(ctx context.Context, id int64) ([]int64, error) {
	return c.ids(ctx, "friends", id)
}

// FollowerIDs returns the ids following id.
func (c *Client) FollowerIDs(ctx context.Context, id int64) ([]int64, error) {
	return c.ids(ctx, "followers", id)
}

type idsPage struct {
	IDs        []int64 `json:"ids"`
	NextCursor int64   `json:"next_cursor"`
}

func (c *Client) ids(ctx context.Context, kind string, id int64) ([]int64, error) {
	key := kind + ":" + strconv.FormatInt(id, 10)

	var all []int64
	err := c.Cached(ctx, key, c.refresh, &all, func() error {
		all = all[:0]
		cursor := int64(-1)
		for range c.maxPages {
			var page idsPage
			url := fmt.Sprintf("%s/1.1/%s/ids.json?user_id=%d&cursor=%d", c.baseURL, kind, id, cursor)
			if err := c.Get(ctx, url, &page); err != nil {
				return err
			}
			all = append(all, page.IDs...)
			if page.NextCursor == 0 {
				return nil
			}
			cursor = page.NextCursor
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = []int64{}
	}
	return all, nil
}
