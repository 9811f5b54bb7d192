package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/A-Ariannejad/KayaScraper/internal/models"
)

// pageLimit and the filter values below are a fixed contract with the
// upstream API: non-hourly listings, budget unfiltered, offset pagination.
const pageLimit = 10000

var baseParams = map[string]string{
	"limit":      strconv.Itoa(pageLimit),
	"fixed":      "false",
	"hourly":     "false",
	"hourly_min": "",
	"fixed_min":  "",
	"fixed_max":  "",
}

// Collector retrieves listing pages for one skill at a time. It holds no
// state between calls; deduplication belongs to the caller.
type Collector struct {
	Client    *http.Client
	SourceURL string
	UserAgent string
}

func NewCollector(sourceURL, userAgent string, timeout time.Duration) *Collector {
	return &Collector{
		SourceURL: sourceURL,
		UserAgent: userAgent,
		Client:    NewRetryClient(timeout),
	}
}

// FetchPage requests a single page of listings for a skill at the given
// offset. An empty result marks the end of pagination.
func (c *Collector) FetchPage(ctx context.Context, skillID, offset int) ([]models.Listing, error) {
	q := url.Values{}
	for k, v := range baseParams {
		q.Set(k, v)
	}
	q.Set("skills", strconv.Itoa(skillID))
	q.Set("offset", strconv.Itoa(offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SourceURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("upstream returned %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return decodePage(body)
}

// decodePage accepts either a bare array or an object exposing the array
// under "projects" or "results".
func decodePage(body []byte) ([]models.Listing, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var page []models.Listing
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, fmt.Errorf("decode page: %w", err)
		}
		return page, nil
	}

	var envelope struct {
		Projects []models.Listing `json:"projects"`
		Results  []models.Listing `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("decode page envelope: %w", err)
	}
	if envelope.Projects != nil {
		return envelope.Projects, nil
	}
	return envelope.Results, nil
}

// ForEachListing walks every page for one skill, advancing the offset by the
// size of the previous page until an empty page arrives. Listings already
// passed to fn stay processed even when a later page fails.
func (c *Collector) ForEachListing(ctx context.Context, skillID int, fn func(models.Listing) error) error {
	offset := 0
	for {
		page, err := c.FetchPage(ctx, skillID, offset)
		if err != nil {
			return fmt.Errorf("skill %d offset %d: %w", skillID, offset, err)
		}
		if len(page) == 0 {
			return nil
		}
		for _, l := range page {
			if err := fn(l); err != nil {
				return err
			}
		}
		offset += len(page)
	}
}
