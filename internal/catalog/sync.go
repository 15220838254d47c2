// Package catalog syncs the external trading-card API into the local cards
// table. It is a best-effort batch job: pages succeed or fail independently
// and failed pages are retried in bounded rounds, so a partial run can be
// resumed without re-fetching what already landed.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"bonfire/internal/models"
	"bonfire/internal/store"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultPageSize = 250
	maxFetchRetries = 5
	maxRetryRounds  = 5
)

type Upserter interface {
	Upsert(ctx context.Context, input store.CardInput) error
}

type Client struct {
	baseURL  string
	apiKey   string
	pageSize int
	http     *http.Client
	limiter  *rate.Limiter
	cards    Upserter
	log      *zap.Logger

	// sleep is swappable so tests don't wait out real backoff.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(baseURL, apiKey string, cards Upserter, log *zap.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		pageSize: defaultPageSize,
		http:     &http.Client{Timeout: 60 * time.Second},
		// The upstream API throttles aggressively; one page every few
		// seconds keeps the job under its limits.
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 1),
		cards:   cards,
		log:     log,
		sleep:   sleepCtx,
	}
}

type Report struct {
	TotalCount     int
	CardsSynced    int
	PagesSucceeded int
	PagesFailed    []int
}

// Sync fetches every page and upserts its cards, then retries failed pages
// in up to maxRetryRounds additional passes.
func (c *Client) Sync(ctx context.Context) (Report, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Report{}, err
	}
	first, err := c.fetchPage(ctx, 1)
	if err != nil {
		return Report{}, fmt.Errorf("fetch first page: %w", err)
	}
	totalCount := int(first.Get("totalCount").Int())
	pageCount := 1
	if totalCount > 0 {
		pageCount = (totalCount + c.pageSize - 1) / c.pageSize
	}
	c.log.Info("card sync starting",
		zap.Int("total_count", totalCount),
		zap.Int("pages", pageCount))

	report := Report{TotalCount: totalCount}
	failed := make(map[int]struct{})

	synced, err := c.ingestPage(ctx, first)
	if err != nil {
		failed[1] = struct{}{}
	} else {
		report.CardsSynced += synced
		report.PagesSucceeded++
	}

	for page := 2; page <= pageCount; page++ {
		if err := c.syncOnePage(ctx, page, &report); err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			c.log.Warn("page failed", zap.Int("page", page), zap.Error(err))
			failed[page] = struct{}{}
		}
	}

	for round := 1; len(failed) > 0 && round <= maxRetryRounds; round++ {
		c.log.Info("retrying failed pages",
			zap.Int("round", round),
			zap.Int("remaining", len(failed)))
		for page := range failed {
			if err := c.syncOnePage(ctx, page, &report); err != nil {
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				continue
			}
			delete(failed, page)
		}
	}

	for page := range failed {
		report.PagesFailed = append(report.PagesFailed, page)
	}
	sort.Ints(report.PagesFailed)
	c.log.Info("card sync finished",
		zap.Int("cards_synced", report.CardsSynced),
		zap.Int("pages_succeeded", report.PagesSucceeded),
		zap.Ints("pages_failed", report.PagesFailed))
	return report, nil
}

func (c *Client) syncOnePage(ctx context.Context, page int, report *Report) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	body, err := c.fetchPage(ctx, page)
	if err != nil {
		return err
	}
	synced, err := c.ingestPage(ctx, body)
	if err != nil {
		return err
	}
	report.CardsSynced += synced
	report.PagesSucceeded++
	return nil
}

func (c *Client) ingestPage(ctx context.Context, body gjson.Result) (int, error) {
	synced := 0
	for _, card := range body.Get("data").Array() {
		input := transformCard(card)
		if input.ExternalID == "" {
			continue
		}
		if err := c.cards.Upsert(ctx, input); err != nil {
			return synced, fmt.Errorf("upsert %s: %w", input.ExternalID, err)
		}
		synced++
	}
	return synced, nil
}

// fetchPage retries transient upstream failures with per-status exponential
// backoff: gateway timeouts back off from 3s, spurious 404s (the API rate
// limiter in disguise) from 5s, explicit 429s from 10s.
func (c *Client) fetchPage(ctx context.Context, page int) (gjson.Result, error) {
	url := fmt.Sprintf("%s/cards?page=%d&pageSize=%d", c.baseURL, page, c.pageSize)
	var lastErr error
	for attempt := 0; attempt < maxFetchRetries; attempt++ {
		body, retryAfter, err := c.doFetch(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if retryAfter <= 0 || attempt == maxFetchRetries-1 {
			break
		}
		wait := retryAfter << attempt
		c.log.Debug("retrying page fetch",
			zap.Int("page", page),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err))
		if err := c.sleep(ctx, wait); err != nil {
			return gjson.Result{}, err
		}
	}
	return gjson.Result{}, fmt.Errorf("page %d: %w", page, lastErr)
}

// doFetch returns the parsed body, or an error plus the base backoff to
// apply before retrying (zero means the failure is permanent).
func (c *Client) doFetch(ctx context.Context, url string) (gjson.Result, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return gjson.Result{}, 0, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return gjson.Result{}, 0, ctx.Err()
		}
		return gjson.Result{}, 3 * time.Second, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return gjson.Result{}, 3 * time.Second, err
		}
		return gjson.ParseBytes(raw), 0, nil
	case http.StatusGatewayTimeout:
		return gjson.Result{}, 3 * time.Second, fmt.Errorf("upstream status %d", resp.StatusCode)
	case http.StatusNotFound:
		return gjson.Result{}, 5 * time.Second, fmt.Errorf("upstream status %d", resp.StatusCode)
	case http.StatusTooManyRequests:
		return gjson.Result{}, 10 * time.Second, fmt.Errorf("upstream status %d", resp.StatusCode)
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return gjson.Result{}, 0, fmt.Errorf("upstream status %d: %s", resp.StatusCode, string(snippet))
	}
}

// Price variants in order of preference.
var priceVariants = []string{"holofoil", "reverseHolofoil", "unlimitedHolofoil", "1stEditionHolofoil", "normal"}

func transformCard(card gjson.Result) store.CardInput {
	input := store.CardInput{
		ExternalID: card.Get("id").String(),
		Name:       card.Get("name").String(),
		SetName:    optString(card.Get("set.name")),
		SetID:      optString(card.Get("set.id")),
		Number:     optString(card.Get("number")),
		Rarity:     optString(card.Get("rarity")),
		Supertype:  optString(card.Get("supertype")),
		ImageSmall: optString(card.Get("images.small")),
		ImageLarge: optString(card.Get("images.large")),
		Language:   detectLanguage(card),
		NameJP:     optString(card.Get("name_jp")),
	}
	if subtypes := card.Get("subtypes"); subtypes.IsArray() {
		raw := subtypes.Raw
		input.SubtypesJSON = &raw
	}
	if minor, ok := extractMarketPriceMinor(card); ok {
		source := "tcgplayer"
		input.MarketPrice = &minor
		input.PriceSource = &source
	}
	if card.Exists() {
		var parsed models.Attrs
		if raw, okRaw := card.Value().(map[string]any); okRaw {
			parsed = models.Attrs(raw)
		}
		input.Raw = parsed
	}
	return input
}

func extractMarketPriceMinor(card gjson.Result) (int64, bool) {
	for _, variant := range priceVariants {
		market := card.Get("tcgplayer.prices." + variant + ".market")
		if market.Exists() && market.Float() > 0 {
			return int64(market.Float()*100 + 0.5), true
		}
	}
	return 0, false
}

var japaneseSetIndicators = []string{"拡張パック", "スターター", "ポケモンカード"}

func detectLanguage(card gjson.Result) string {
	if lang := card.Get("language").String(); lang != "" {
		switch lang {
		case "ja", "japanese", "jp":
			return "ja"
		case "en", "english":
			return "en"
		}
	}
	name := card.Get("name").String()
	for _, r := range name {
		if (r >= 0x3040 && r <= 0x309F) || (r >= 0x30A0 && r <= 0x30FF) {
			return "ja"
		}
	}
	setName := card.Get("set.name").String()
	for _, indicator := range japaneseSetIndicators {
		if strings.Contains(setName, indicator) {
			return "ja"
		}
	}
	return "en"
}

func optString(value gjson.Result) *string {
	if !value.Exists() || value.String() == "" {
		return nil
	}
	s := value.String()
	return &s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
