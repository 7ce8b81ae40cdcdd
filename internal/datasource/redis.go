// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package datasource

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/courserank/internal/models"
)

// RedisClient is the subset of go-redis used by Redis.
type RedisClient interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	ZAdd(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd
	ZRevRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SIsMember(ctx context.Context, key string, member interface{}) *redis.BoolCmd
	Close() error
}

// RedisOptions configures OpenRedis.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// Redis is a Source over Redis. Layout, with prefix P:
//
//	P:courses             hash  course id -> course JSON
//	P:popularity          zset  course id scored by enrollment count
//	P:learners            set   known learner ids
//	P:interactions:<id>   hash  course id -> interaction JSON
type Redis struct {
	client RedisClient
	prefix string
}

// OpenRedis connects and pings the server.
func OpenRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return NewRedis(client, opts.KeyPrefix), nil
}

// NewRedis wraps an existing client.
func NewRedis(client RedisClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(parts ...string) string {
	k := r.prefix
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += p
	}
	return k
}

// Name implements Source.
func (r *Redis) Name() string { return "redis" }

// Close implements Source.
func (r *Redis) Close() error { return r.client.Close() }

// PutCourse stores the course and its popularity score.
func (r *Redis) PutCourse(ctx context.Context, c models.Course) error {
	if !models.ValidID(c.ID) {
		return fmt.Errorf("course id %q: %w", c.ID, models.ErrInvalidArgument)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal course %q: %w", c.ID, err)
	}
	if err := r.client.HSet(ctx, r.key("courses"), c.ID, data).Err(); err != nil {
		return fmt.Errorf("hset course %q: %w", c.ID, err)
	}
	member := redis.Z{Score: float64(c.EnrollmentCount), Member: c.ID}
	if err := r.client.ZAdd(ctx, r.key("popularity"), member).Err(); err != nil {
		return fmt.Errorf("zadd popularity %q: %w", c.ID, err)
	}
	return nil
}

// AddLearner registers a learner.
func (r *Redis) AddLearner(ctx context.Context, learnerID string) error {
	if !models.ValidID(learnerID) {
		return fmt.Errorf("learner id %q: %w", learnerID, models.ErrInvalidArgument)
	}
	if err := r.client.SAdd(ctx, r.key("learners"), learnerID).Err(); err != nil {
		return fmt.Errorf("sadd learner %q: %w", learnerID, err)
	}
	return nil
}

// PutInteraction records an interaction. An older update for the same
// (learner, course) pair never overwrites a newer one. The read and write
// are separate commands, so concurrent writers for one pair are not ordered.
func (r *Redis) PutInteraction(ctx context.Context, in models.Interaction) error {
	if !models.ValidID(in.CourseID) {
		return fmt.Errorf("course id %q: %w", in.CourseID, models.ErrInvalidArgument)
	}
	if !models.ValidCompletion(in.Completion) {
		return fmt.Errorf("interaction %q/%q completion %v outside [0,1]: %w", in.LearnerID, in.CourseID, in.Completion, models.ErrInvalidArgument)
	}
	if err := r.AddLearner(ctx, in.LearnerID); err != nil {
		return err
	}
	key := r.key("interactions", in.LearnerID)
	raw, err := r.client.HGet(ctx, key, in.CourseID).Result()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return fmt.Errorf("hget interaction %q/%q: %w", in.LearnerID, in.CourseID, err)
	default:
		var current models.Interaction
		if err := json.Unmarshal([]byte(raw), &current); err == nil && current.UpdatedAt.After(in.UpdatedAt) {
			return nil
		}
	}

	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal interaction: %w", err)
	}
	if err := r.client.HSet(ctx, key, in.CourseID, data).Err(); err != nil {
		return fmt.Errorf("hset interaction %q/%q: %w", in.LearnerID, in.CourseID, err)
	}
	return nil
}

// Courses returns the catalog ordered by course ID.
func (r *Redis) Courses(ctx context.Context) ([]models.Course, error) {
	fields, err := r.client.HGetAll(ctx, r.key("courses")).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall courses: %w", err)
	}
	courses := make([]models.Course, 0, len(fields))
	for id, raw := range fields {
		var c models.Course
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("decode course %q: %w", id, err)
		}
		courses = append(courses, c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

// Interactions returns the learner's interactions, or ErrUnknownLearner.
func (r *Redis) Interactions(ctx context.Context, learnerID string) ([]models.Interaction, error) {
	known, err := r.client.SIsMember(ctx, r.key("learners"), learnerID).Result()
	if err != nil {
		return nil, fmt.Errorf("sismember learner %q: %w", learnerID, err)
	}
	if !known {
		return nil, fmt.Errorf("learner %q: %w", learnerID, models.ErrUnknownLearner)
	}

	fields, err := r.client.HGetAll(ctx, r.key("interactions", learnerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall interactions %q: %w", learnerID, err)
	}
	interactions := make([]models.Interaction, 0, len(fields))
	for courseID, raw := range fields {
		var in models.Interaction
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			return nil, fmt.Errorf("decode interaction %q/%q: %w", learnerID, courseID, err)
		}
		in.LearnerID = learnerID
		in.CourseID = courseID
		interactions = append(interactions, in)
	}
	sort.Slice(interactions, func(i, j int) bool { return interactions[i].CourseID < interactions[j].CourseID })
	return interactions, nil
}

// PopularCourses reads the popularity sorted set, highest score first.
// Equal scores follow Redis ordering (descending member).
func (r *Redis) PopularCourses(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}
	ids, err := r.client.ZRevRange(ctx, r.key("popularity"), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange popularity: %w", err)
	}
	return ids, nil
}
