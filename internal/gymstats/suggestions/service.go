package suggestions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=suggestions_test

const (
	DefaultLimit = 10
	MaxLimit     = 25

	cacheExpireSeconds = 60 * 60
	defaultCacheSize   = 10 * 1024 * 1024
)

type catalogRepo interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

type Service struct {
	repo  catalogRepo
	cache *freecache.Cache
}

// NewService caches suggestions in cacheSize bytes, zero means the default size.
func NewService(repo catalogRepo, cacheSize int) *Service {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	return &Service{
		repo:  repo,
		cache: freecache.NewCache(cacheSize),
	}
}

// NormalizeQuery lowercases and collapses whitespace, so equivalent inputs share a cache entry.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

func (s *Service) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	query = NormalizeQuery(query)
	if query == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	} else if limit > MaxLimit {
		limit = MaxLimit
	}

	cacheKey := []byte(fmt.Sprintf("suggest::%d::%s", limit, query))
	if cached, err := s.cache.Get(cacheKey); err == nil {
		var names []string
		if err := json.Unmarshal(cached, &names); err == nil {
			return names, nil
		} else {
			log.Errorf("failed to unmarshal cached suggestions for [%s]: %s", query, err)
		}
	}

	names, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}

	namesBytes, err := json.Marshal(names)
	if err != nil {
		log.Errorf("failed to marshal suggestions for [%s]: %s", query, err)
		return names, nil
	}
	if err := s.cache.Set(cacheKey, namesBytes, cacheExpireSeconds); err != nil {
		log.Errorf("failed to cache suggestions for [%s]: %s", query, err)
	}

	return names, nil
}
