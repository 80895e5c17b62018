package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lumiskin/skincare-backend/pkg/facebook"
	"github.com/lumiskin/skincare-backend/pkg/logger"
)

const (
	defaultFeedLimit = 10
	feedCacheKey     = "facebook:feed:%d"
)

// PageFeed is the part of the Graph client the feed relies on
type PageFeed interface {
	PagePosts(ctx context.Context, limit int) ([]facebook.Post, error)
}

type FeedService interface {
	GetPagePosts(ctx context.Context, limit int) ([]facebook.Post, error)
}

type feedService struct {
	client PageFeed
	cache  JSONCache
	ttl    time.Duration
}

// NewFeedService wraps the Graph client; cache may be nil
func NewFeedService(client PageFeed, cache JSONCache, ttl time.Duration) FeedService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &feedService{
		client: client,
		cache:  cache,
		ttl:    ttl,
	}
}

func (s *feedService) GetPagePosts(ctx context.Context, limit int) ([]facebook.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultFeedLimit
	}
	key := fmt.Sprintf(feedCacheKey, limit)

	if s.cache != nil {
		var cached []facebook.Post
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logger.Warn("Feed cache read failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		if hit {
			return cached, nil
		}
	}

	posts, err := s.client.PagePosts(ctx, limit)
	if err != nil {
		logger.Error("Failed to fetch facebook page posts", err, map[string]interface{}{
			"limit": limit,
		})
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, posts, s.ttl); err != nil {
			logger.Warn("Feed cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return posts, nil
}
