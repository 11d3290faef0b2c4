// Package feed fetches OCDS release pages from the public eTenders API.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tender-insight-hub/internal/common/config"
	"tender-insight-hub/internal/common/errors"
	"tender-insight-hub/internal/common/logger"
	"tender-insight-hub/internal/common/metrics"
)

const userAgent = "TenderInsightHub/1.0"

// maxPages caps a single fetch run so a misreporting API cannot trap the
// loader in an endless walk.
const maxPages = 10

// Page is one page of OCDS releases. The API sometimes returns the
// releases under "data" instead of "releases".
type Page struct {
	Releases     []map[string]interface{} `json:"releases"`
	Data         []map[string]interface{} `json:"data"`
	TotalPages   int                      `json:"totalPages"`
	TotalRecords int                      `json:"totalRecords"`
}

// Items returns the releases regardless of which field carried them.
func (p *Page) Items() []map[string]interface{} {
	if len(p.Releases) > 0 {
		return p.Releases
	}
	return p.Data
}

// Client pages through the OCDS release feed.
type Client struct {
	baseURL  string
	pageSize int
	http     *http.Client
	logger   logger.Logger
}

// NewClient creates a feed client from configuration.
func NewClient(cfg config.FeedConfig, log logger.Logger) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		pageSize: pageSize,
		http:     &http.Client{Timeout: timeout},
		logger:   log,
	}
}

// FetchPage fetches a single page of releases.
func (c *Client) FetchPage(ctx context.Context, pageNumber int, dateFrom, dateTo string) (*Page, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, errors.NewFeedFetchFailedError(err)
	}

	q := u.Query()
	q.Set("PageNumber", strconv.Itoa(pageNumber))
	q.Set("PageSize", strconv.Itoa(c.pageSize))
	if dateFrom != "" {
		q.Set("dateFrom", dateFrom)
	}
	if dateTo != "" {
		q.Set("dateTo", dateTo)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.NewFeedFetchFailedError(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.NewFeedFetchFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, errors.NewFeedFetchFailedError(
			fmt.Errorf("feed returned status %d", res.StatusCode))
	}

	var page Page
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		return nil, errors.NewFeedFetchFailedError(err)
	}

	metrics.FeedPagesFetched.Inc()
	return &page, nil
}

// FetchAll walks the feed page by page until it is exhausted, invoking
// handle for every release. The walk stops at the API's reported page
// count, on the first empty page, or at the safety page cap.
func (c *Client) FetchAll(ctx context.Context, dateFrom, dateTo string,
	handle func(release map[string]interface{}) error) (int, error) {

	total := 0
	for pageNumber := 1; pageNumber <= maxPages; pageNumber++ {
		page, err := c.FetchPage(ctx, pageNumber, dateFrom, dateTo)
		if err != nil {
			return total, err
		}

		items := page.Items()
		c.logger.Info("feed page fetched", map[string]interface{}{
			"page":     pageNumber,
			"releases": len(items),
		})
		if len(items) == 0 {
			break
		}

		for _, release := range items {
			if err := handle(release); err != nil {
				return total, err
			}
			total++
		}

		if page.TotalPages > 0 && pageNumber >= page.TotalPages {
			break
		}
	}
	return total, nil
}
