package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"osrs-quests-scraper/internal/observability"
)

// Cache хранит разобранные robots.txt по хосту
type Cache struct {
	cache     map[string]*entry
	ttl       time.Duration
	userAgent string
	client    *http.Client
	mu        sync.RWMutex
	logger    *observability.Logger
}

type entry struct {
	data      *robotstxt.RobotsData
	expiresAt time.Time
}

func NewCache(ttl, timeout time.Duration, userAgent string, logger *observability.Logger) *Cache {
	return &Cache{
		cache:     make(map[string]*entry),
		ttl:       ttl,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// IsAllowed проверяет URL по robots.txt его хоста. Любая ошибка получения файла трактуется как "разрешено"
func (rc *Cache) IsAllowed(ctx context.Context, urlStr string) (bool, error) {
	u, err := url.Parse(urlStr)
	if err != nil {
		return false, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Host == "" {
		return false, fmt.Errorf("invalid URL: missing host: %s", urlStr)
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	rc.mu.RLock()
	cached, exists := rc.cache[u.Host]
	rc.mu.RUnlock()

	if exists && time.Now().Before(cached.expiresAt) {
		// Cache hit
		return cached.data.TestAgent(path, rc.userAgent), nil
	}

	data := rc.fetch(ctx, u)
	if data == nil {
		return true, nil
	}

	// Cache it
	rc.mu.Lock()
	rc.cache[u.Host] = &entry{
		data:      data,
		expiresAt: time.Now().Add(rc.ttl),
	}
	rc.mu.Unlock()

	return data.TestAgent(path, rc.userAgent), nil
}

func (rc *Cache) fetch(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		// If we can't fetch, assume allowed
		return nil
	}
	req.Header.Set("User-Agent", rc.userAgent)

	resp, err := rc.client.Do(req)
	if err != nil {
		// Network error: assume allowed
		rc.logger.Warn("robots.txt fetch failed, assuming allowed", "url", robotsURL, "error", err.Error())
		return nil
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			rc.logger.Warn("Failed to close response body", "error", err.Error())
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	// 4xx: правил нет (всё разрешено), 5xx запрещает всё (семантика robotstxt)
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		rc.logger.Warn("robots.txt parse failed, assuming allowed", "url", robotsURL, "error", err.Error())
		return nil
	}
	return data
}
