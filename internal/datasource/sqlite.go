// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/tomtom215/courserank/internal/models"
)

// sqliteTimeLayout is fixed width so stored timestamps compare as text.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS courses (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL DEFAULT '',
	description      TEXT NOT NULL DEFAULT '',
	topics           TEXT NOT NULL DEFAULT '[]',
	enrollment_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_courses_popularity ON courses(enrollment_count DESC, id ASC);

CREATE TABLE IF NOT EXISTS learners (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS interactions (
	learner_id TEXT NOT NULL REFERENCES learners(id),
	course_id  TEXT NOT NULL,
	completion REAL NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (learner_id, course_id)
);
`

// SQLite is a Source backed by an embedded SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared and
	// serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Name implements Source.
func (s *SQLite) Name() string { return "sqlite" }

// Close implements Source.
func (s *SQLite) Close() error { return s.db.Close() }

// PutCourse inserts or updates a course.
func (s *SQLite) PutCourse(ctx context.Context, c models.Course) error {
	if !models.ValidID(c.ID) {
		return fmt.Errorf("course id %q: %w", c.ID, models.ErrInvalidArgument)
	}
	topics := c.Topics
	if topics == nil {
		topics = []string{}
	}
	topicsJSON, err := json.Marshal(topics)
	if err != nil {
		return fmt.Errorf("marshal topics: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO courses (id, title, description, topics, enrollment_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			topics = excluded.topics,
			enrollment_count = excluded.enrollment_count`,
		c.ID, c.Title, c.Description, string(topicsJSON), c.EnrollmentCount)
	if err != nil {
		return fmt.Errorf("upsert course %q: %w", c.ID, err)
	}
	return nil
}

// AddLearner registers a learner.
func (s *SQLite) AddLearner(ctx context.Context, learnerID string) error {
	if !models.ValidID(learnerID) {
		return fmt.Errorf("learner id %q: %w", learnerID, models.ErrInvalidArgument)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO learners (id, created_at) VALUES (?, ?)`,
		learnerID, time.Now().UTC().Format(sqliteTimeLayout))
	if err != nil {
		return fmt.Errorf("insert learner %q: %w", learnerID, err)
	}
	return nil
}

// PutInteraction records an interaction. An older update for the same
// (learner, course) pair never overwrites a newer one.
func (s *SQLite) PutInteraction(ctx context.Context, in models.Interaction) error {
	if !models.ValidID(in.CourseID) {
		return fmt.Errorf("course id %q: %w", in.CourseID, models.ErrInvalidArgument)
	}
	if !models.ValidCompletion(in.Completion) {
		return fmt.Errorf("interaction %q/%q completion %v outside [0,1]: %w", in.LearnerID, in.CourseID, in.Completion, models.ErrInvalidArgument)
	}
	if err := s.AddLearner(ctx, in.LearnerID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO interactions (learner_id, course_id, completion, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(learner_id, course_id) DO UPDATE SET
			completion = excluded.completion,
			updated_at = excluded.updated_at
		WHERE excluded.updated_at >= interactions.updated_at`,
		in.LearnerID, in.CourseID, in.Completion, in.UpdatedAt.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return fmt.Errorf("upsert interaction %q/%q: %w", in.LearnerID, in.CourseID, err)
	}
	return nil
}

// Courses returns the catalog ordered by course ID.
func (s *SQLite) Courses(ctx context.Context) ([]models.Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, topics, enrollment_count FROM courses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		var (
			c      models.Course
			topics string
		)
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &topics, &c.EnrollmentCount); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		if err := json.Unmarshal([]byte(topics), &c.Topics); err != nil {
			return nil, fmt.Errorf("decode topics for %q: %w", c.ID, err)
		}
		if len(c.Topics) == 0 {
			c.Topics = nil
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// Interactions returns the learner's interactions, or ErrUnknownLearner.
func (s *SQLite) Interactions(ctx context.Context, learnerID string) ([]models.Interaction, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM learners WHERE id = ?`, learnerID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("learner %q: %w", learnerID, models.ErrUnknownLearner)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup learner %q: %w", learnerID, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT course_id, completion, updated_at
		FROM interactions
		WHERE learner_id = ?
		ORDER BY course_id`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	interactions := []models.Interaction{}
	for rows.Next() {
		in := models.Interaction{LearnerID: learnerID}
		var updated string
		if err := rows.Scan(&in.CourseID, &in.Completion, &updated); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		if in.UpdatedAt, err = time.Parse(sqliteTimeLayout, updated); err != nil {
			return nil, fmt.Errorf("parse updated_at %q: %w", updated, err)
		}
		interactions = append(interactions, in)
	}
	return interactions, rows.Err()
}

// PopularCourses orders by enrollment descending, then course ID.
func (s *SQLite) PopularCourses(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM courses ORDER BY enrollment_count DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query popularity: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan course id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
