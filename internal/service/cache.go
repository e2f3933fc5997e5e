package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// StudentCache stores rendered student listings per course and sprint.
type StudentCache interface {
	Get(ctx context.Context, course string, sprint int, dest interface{}) bool
	Set(ctx context.Context, course string, sprint int, value interface{})
	InvalidateCourse(ctx context.Context, course string)
}

type redisStudentCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewStudentCache returns a Redis backed cache, or nil when client is nil.
func NewStudentCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) StudentCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisStudentCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "student_cache").Logger(),
	}
}

func studentsCacheKey(course string, sprint int) string {
	return fmt.Sprintf("students:%s:%d", course, sprint)
}

func (c *redisStudentCache) Get(ctx context.Context, course string, sprint int, dest interface{}) bool {
	cached, err := c.client.Get(ctx, studentsCacheKey(course, sprint)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("course", course).Msg("failed to read students cache")
		}
		return false
	}
	if err := json.Unmarshal(cached, dest); err != nil {
		c.logger.Warn().Err(err).Str("course", course).Msg("discarding malformed students cache entry")
		return false
	}
	return true
}

func (c *redisStudentCache) Set(ctx context.Context, course string, sprint int, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, studentsCacheKey(course, sprint), payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("course", course).Msg("failed to store students cache")
	}
}

// InvalidateCourse drops every cached listing of the course.
func (c *redisStudentCache) InvalidateCourse(ctx context.Context, course string) {
	pattern := fmt.Sprintf("students:%s:*", course)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn().Err(err).Str("course", course).Msg("failed to scan students cache")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Str("course", course).Msg("failed to invalidate students cache")
	}
}
