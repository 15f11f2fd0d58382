package store

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	log "github.com/sirupsen/logrus"

	"github.com/Dillesh56/PrincessDainaBot-1/internal/db"
	pderrors "github.com/Dillesh56/PrincessDainaBot-1/internal/errors"
)

// Word characters for boundary purposes are Unicode letters, digits and underscore.
const (
	wordBoundaryLeft  = `(?:^|[^\p{L}\p{N}_])`
	wordBoundaryRight = `(?:$|[^\p{L}\p{N}_])`
)

type filtersDB interface {
	PutFilter(ctx context.Context, chatID int64, key, reply string) error
	RemoveFilter(ctx context.Context, chatID int64, key string) (bool, error)
	ListFilters(ctx context.Context, chatID int64) ([]*db.FilterEntry, error)
}

// FilterTable maps per-group keywords to auto-replies.
type FilterTable struct {
	db       filtersDB
	entries  *expirable.LRU[int64, []*db.FilterEntry]
	patterns *lru.Cache[string, *regexp.Regexp]
	// Writes and cache fills for a chat share a stripe so a fill never
	// stores rows read before a concurrent write.
	locks  [lockStripes]sync.Mutex
	logger *log.Entry
}

func NewFilterTable(client filtersDB, cacheSize int, ttl time.Duration) *FilterTable {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	patterns, err := lru.New[string, *regexp.Regexp](cacheSize)
	if err != nil {
		panic(err)
	}
	return &FilterTable{
		db:       client,
		entries:  expirable.NewLRU[int64, []*db.FilterEntry](cacheSize, nil, ttl),
		patterns: patterns,
		logger:   log.WithField("object", "FilterTable"),
	}
}

func (f *FilterTable) Put(ctx context.Context, chatID int64, key, reply string) error {
	key = db.NormalizeFilterKey(key)
	if key == "" {
		return pderrors.ErrInvalidInput
	}
	mu := f.lockFor(chatID)
	mu.Lock()
	defer mu.Unlock()
	if err := f.db.PutFilter(ctx, chatID, key, reply); err != nil {
		return pderrors.Storage("put filter", err)
	}
	f.entries.Remove(chatID)
	return nil
}

func (f *FilterTable) Remove(ctx context.Context, chatID int64, key string) (bool, error) {
	mu := f.lockFor(chatID)
	mu.Lock()
	defer mu.Unlock()
	existed, err := f.db.RemoveFilter(ctx, chatID, db.NormalizeFilterKey(key))
	if err != nil {
		return false, pderrors.Storage("remove filter", err)
	}
	f.entries.Remove(chatID)
	return existed, nil
}

// ListKeys returns the group's keys in lexicographic order.
func (f *FilterTable) ListKeys(ctx context.Context, chatID int64) ([]string, error) {
	entries, err := f.load(ctx, chatID)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	return keys, nil
}

// Match returns the reply of the first key found in text as a whole word,
// or of the key equal to the whole trimmed text. Storage errors mean no match.
func (f *FilterTable) Match(ctx context.Context, chatID int64, text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	entries, err := f.load(ctx, chatID)
	if err != nil {
		f.logger.WithError(err).WithField("chat_id", chatID).Warn("filters unavailable, skipping match")
		return "", false
	}
	lowered := strings.ToLower(text)
	trimmed := strings.TrimSpace(lowered)
	for _, e := range entries {
		if trimmed == e.Key || f.pattern(e.Key).MatchString(lowered) {
			return e.Reply, true
		}
	}
	return "", false
}

func (f *FilterTable) load(ctx context.Context, chatID int64) ([]*db.FilterEntry, error) {
	if cached, ok := f.entries.Get(chatID); ok {
		return cached, nil
	}
	mu := f.lockFor(chatID)
	mu.Lock()
	defer mu.Unlock()
	if cached, ok := f.entries.Get(chatID); ok {
		return cached, nil
	}
	entries, err := f.db.ListFilters(ctx, chatID)
	if err != nil {
		return nil, pderrors.Storage("list filters", err)
	}
	f.entries.Add(chatID, entries)
	return entries, nil
}

func (f *FilterTable) lockFor(chatID int64) *sync.Mutex {
	return &f.locks[uint64(chatID)%lockStripes]
}

func (f *FilterTable) pattern(key string) *regexp.Regexp {
	if re, ok := f.patterns.Get(key); ok {
		return re
	}
	re := regexp.MustCompile(`(?i)` + wordBoundaryLeft + regexp.QuoteMeta(key) + wordBoundaryRight)
	f.patterns.Add(key, re)
	return re
}
