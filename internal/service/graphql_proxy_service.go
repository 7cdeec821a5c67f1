package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

const graphqlCachePrefix = "graphql:"

type graphqlForwarder interface {
	Forward(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
}

// GraphQLProxyService relays GraphQL requests to the gateway, optionally caching query
// responses.
type GraphQLProxyService struct {
	upstream graphqlForwarder
	cache    *CacheService
	ttl      time.Duration
	logger   *zap.Logger
}

// NewGraphQLProxyService constructs the proxy. cache may be nil.
func NewGraphQLProxyService(upstream graphqlForwarder, cache *CacheService, ttl time.Duration, logger *zap.Logger) *GraphQLProxyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphQLProxyService{upstream: upstream, cache: cache, ttl: ttl, logger: logger}
}

// Forward relays payload and returns the upstream JSON body. Query responses without
// errors are cached; a successful mutation clears the cached queries.
func (s *GraphQLProxyService) Forward(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	op := operationOf(payload)
	cacheable := s.cache.Enabled() && op == opQuery
	key := ""
	if cacheable {
		key = cacheKey(payload)
		if cached, hit := s.cache.Get(ctx, key); hit {
			return cached, nil
		}
	}

	body, err := s.upstream.Forward(ctx, payload)
	if err != nil {
		s.logger.Warn("graphql proxy failed", zap.Error(err))
		return nil, err
	}

	switch {
	case cacheable && !hasErrors(body):
		s.cache.Set(ctx, key, body, s.ttl)
	case op == opMutation && !hasErrors(body):
		s.cache.Invalidate(ctx, graphqlCachePrefix)
	}
	return body, nil
}

func cacheKey(payload json.RawMessage) string {
	sum := sha256.Sum256(payload)
	return graphqlCachePrefix + hex.EncodeToString(sum[:])
}

func hasErrors(body json.RawMessage) bool {
	var resp struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return true
	}
	return len(resp.Errors) > 0 && string(resp.Errors) != "null"
}
