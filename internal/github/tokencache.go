package github

import (
	"sync"
	"time"

	"commit-lens/internal/model"
)

// tokenExpirySkew drops cached tokens this long before GitHub would reject them.
const tokenExpirySkew = time.Minute

// tokenCache holds installation tokens keyed by installation id. A nil cache
// is valid and never hits.
type tokenCache struct {
	mu     sync.Mutex
	tokens map[int64]model.InstallationToken
	now    func() time.Time
}

func newTokenCache(now func() time.Time) *tokenCache {
	return &tokenCache{tokens: make(map[int64]model.InstallationToken), now: now}
}

func (c *tokenCache) get(installationID int64) (*model.InstallationToken, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	tok, ok := c.tokens[installationID]
	if !ok {
		return nil, false
	}
	if !c.now().Before(tok.ExpiresAt.Add(-tokenExpirySkew)) {
		delete(c.tokens, installationID)
		return nil, false
	}
	return &tok, true
}

func (c *tokenCache) put(installationID int64, tok *model.InstallationToken) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[installationID] = *tok
}
