package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
)

// RowCache stores the rows of one customer branch. A miss is (nil, false, nil).
type RowCache interface {
	Get(ctx context.Context, customerID, branch string) ([]maintenance.Row, bool, error)
	Set(ctx context.Context, customerID, branch string, rows []maintenance.Row, ttl time.Duration) error
	Invalidate(ctx context.Context, customerID, branch string) error
}

type memoryEntry struct {
	rows    []maintenance.Row
	expires time.Time
}

// MemoryRowCache is the single-process RowCache used when redis is not
// configured.
type MemoryRowCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryRowCache() *MemoryRowCache {
	return &MemoryRowCache{entries: map[string]memoryEntry{}, now: time.Now}
}

func memoryKey(customerID, branch string) string {
	return strings.TrimSpace(customerID) + "\x00" + strings.TrimSpace(branch)
}

func (c *MemoryRowCache) Get(_ context.Context, customerID, branch string) ([]maintenance.Row, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := memoryKey(customerID, branch)
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return append([]maintenance.Row(nil), e.rows...), true, nil
}

func (c *MemoryRowCache) Set(_ context.Context, customerID, branch string, rows []maintenance.Row, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var expires time.Time
	if ttl > 0 {
		expires = c.now().Add(ttl)
	}
	c.entries[memoryKey(customerID, branch)] = memoryEntry{rows: append([]maintenance.Row(nil), rows...), expires: expires}
	return nil
}

func (c *MemoryRowCache) Invalidate(_ context.Context, customerID, branch string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, memoryKey(customerID, branch))
	return nil
}
