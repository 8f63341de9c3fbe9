package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"thai-travel-portal/internal/models"
)

// Fetcher asks for one random eligible notification. A nil notification with
// a nil error means there is nothing to show.
type Fetcher interface {
	FetchRandom(ctx context.Context, page models.Page, itemID uint, hasItem bool) (*models.PartnerNotification, error)
}

// ServiceFetcher calls a Selector in process.
type ServiceFetcher struct {
	Selector  *Selector
	VisitorID string
}

func (f ServiceFetcher) FetchRandom(ctx context.Context, page models.Page, itemID uint, hasItem bool) (*models.PartnerNotification, error) {
	return f.Selector.Pick(ctx, page, itemID, hasItem, f.VisitorID)
}

// HTTPFetcher calls GET /api/partner-notification/random on a portal.
type HTTPFetcher struct {
	BaseURL   string
	VisitorID string
	Client    *http.Client
}

type randomResponse struct {
	Success      bool                        `json:"success"`
	Notification *models.PartnerNotification `json:"notification"`
}

func (f HTTPFetcher) FetchRandom(ctx context.Context, page models.Page, itemID uint, hasItem bool) (*models.PartnerNotification, error) {
	q := url.Values{}
	q.Set("page", string(page))
	if hasItem {
		q.Set("currentItemId", strconv.FormatUint(uint64(itemID), 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/api/partner-notification/random?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.VisitorID != "" {
		req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: f.VisitorID})
	}

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch notification: status %d", resp.StatusCode)
	}

	var body randomResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode notification: %w", err)
	}
	if !body.Success {
		return nil, nil
	}
	return body.Notification, nil
}

// HTTPCounter records views with POST /api/partner-notification/:id/view,
// the counterpart of HTTPFetcher. The portal owns the real counts; Views
// reports the last count the portal returned for this process.
type HTTPCounter struct {
	BaseURL   string
	VisitorID string
	Client    *http.Client

	mu   sync.Mutex
	seen map[viewKey]int
}

type viewResponse struct {
	Success bool `json:"success"`
	Views   int  `json:"views"`
}

func (c *HTTPCounter) visitor(sessionID string) string {
	if sessionID != "" {
		return sessionID
	}
	return c.VisitorID
}

func (c *HTTPCounter) Views(_ context.Context, sessionID string, id uint) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen[viewKey{c.visitor(sessionID), id}], nil
}

func (c *HTTPCounter) Increment(ctx context.Context, sessionID string, id uint) (int, error) {
	visitor := c.visitor(sessionID)
	endpoint := fmt.Sprintf("%s/api/partner-notification/%d/view", c.BaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	if visitor != "" {
		req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: visitor})
	}

	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("record view: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("record view: status %d", resp.StatusCode)
	}

	var body viewResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode view count: %w", err)
	}
	if !body.Success {
		return 0, fmt.Errorf("record view: portal refused")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen == nil {
		c.seen = make(map[viewKey]int)
	}
	c.seen[viewKey{visitor, id}] = body.Views
	return body.Views, nil
}

// VisitorCookie carries the visitor session id view counts are keyed by.
const VisitorCookie = "visitor_session"
