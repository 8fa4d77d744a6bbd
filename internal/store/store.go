// Package store is the Postgres persistence layer for the knowledge hub.
// It owns the content tables and exposes the bulk read used to build the
// retrieval corpus.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
)

type Store struct {
	DB *sql.DB
}

// Content row type tags. These drive the tagged-union dispatch when rows
// are projected into retrieval content items.
const (
	RowTypeResource   = "resource"
	RowTypeForum      = "forum"
	RowTypeCommodity  = "commodity"
	RowTypeCMI        = "cmi"
	RowTypeFAQ        = "faq"
	RowTypeCategory   = "category"
	RowTypeTeamMember = "team_member"
)

// ContentRow is a heterogeneous source record. Type identifies the source
// table; only the fields meaningful for that type are populated.
type ContentRow struct {
	Type        string
	ID          string
	Title       string
	Description string
	Question    string
	Answer      string
	Name        string
	Role        string
	Category    string
	Tags        string
	URL         string
	Author      string
	Location    string
	CreatedAt   time.Time
}

func New(ctx context.Context) (*Store, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		host := getenvDefault("POSTGRES_HOST", "localhost")
		port := getenvDefault("POSTGRES_PORT", "5432")
		user := os.Getenv("POSTGRES_USER")
		pass := os.Getenv("POSTGRES_PASSWORD")
		db := os.Getenv("POSTGRES_DB")
		ssl := getenvDefault("POSTGRES_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, ssl)
	}
	return NewWithDSN(ctx, dsn)
}

func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// FetchContentRows bulk-reads every content record eligible for retrieval.
// Any table-level failure aborts the fetch; callers treat that as a corpus
// build failure and keep serving the previous snapshot.
func (s *Store) FetchContentRows(ctx context.Context) ([]ContentRow, error) {
	var rows []ContentRow
	fetchers := []struct {
		name string
		fn   func(context.Context) ([]ContentRow, error)
	}{
		{"resources", s.fetchResources},
		{"forum_posts", s.fetchForumPosts},
		{"commodities", s.fetchCommodities},
		{"cmi_entries", s.fetchCMIEntries},
		{"faqs", s.fetchFAQs},
		{"categories", s.fetchCategories},
		{"team_members", s.fetchTeamMembers},
	}
	for _, f := range fetchers {
		batch, err := f.fn(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", f.name, err)
		}
		rows = append(rows, batch...)
	}
	return rows, nil
}

func (s *Store) fetchResources(ctx context.Context) ([]ContentRow, error) {
	rs, err := s.DB.QueryContext(ctx, `SELECT id, title, description, COALESCE(tags,''), COALESCE(category,''), COALESCE(url,''), COALESCE(author,''), created_at FROM resources ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	var out []ContentRow
	for rs.Next() {
		r := ContentRow{Type: RowTypeResource}
		if err := rs.Scan(&r.ID, &r.Title, &r.Description, &r.Tags, &r.Category, &r.URL, &r.Author, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rs.Err()
}

func (s *Store) fetchForumPosts(ctx context.Context) ([]ContentRow, error) {
	rs, err := s.DB.QueryContext(ctx, `SELECT id, title, body, COALESCE(author,''), created_at FROM forum_posts ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	var out []ContentRow
	for rs.Next() {
		r := ContentRow{Type: RowTypeForum}
		if err := rs.Scan(&r.ID, &r.Title, &r.Description, &r.Author, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rs.Err()
}

func (s *Store) fetchCommodities(ctx context.Context) ([]ContentRow, error) {
	rs, err := s.DB.QueryContext(ctx, `SELECT id, name, description, COALESCE(category,''), created_at FROM commodities ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	var out []ContentRow
	for rs.Next() {
		r := ContentRow{Type: RowTypeCommodity}
		if err := rs.Scan(&r.ID, &r.Name, &r.Description, &r.Category, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rs.Err()
}

func (s *Store) fetchCMIEntries(ctx context.Context) ([]ContentRow, error) {
	rs, err := s.DB.QueryContext(ctx, `SELECT id, name, description, COALESCE(location,''), created_at FROM cmi_entries ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	var out []ContentRow
	for rs.Next() {
		r := ContentRow{Type: RowTypeCMI}
		if err := rs.Scan(&r.ID, &r.Name, &r.Description, &r.Location, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rs.Err()
}

func (s *Store) fetchFAQs(ctx context.Context) ([]ContentRow, error) {
	rs, err := s.DB.QueryContext(ctx, `SELECT id, question, answer, created_at FROM faqs ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	var out []ContentRow
	for rs.Next() {
		r := ContentRow{Type: RowTypeFAQ}
		if err := rs.Scan(&r.ID, &r.Question, &r.Answer, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rs.Err()
}

func (s *Store) fetchCategories(ctx context.Context) ([]ContentRow, error) {
	rs, err := s.DB.QueryContext(ctx, `SELECT id, name, COALESCE(description,''), created_at FROM categories ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	var out []ContentRow
	for rs.Next() {
		r := ContentRow{Type: RowTypeCategory}
		if err := rs.Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rs.Err()
}

func (s *Store) fetchTeamMembers(ctx context.Context) ([]ContentRow, error) {
	rs, err := s.DB.QueryContext(ctx, `SELECT id, name, COALESCE(role,''), COALESCE(bio,''), created_at FROM team_members ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	var out []ContentRow
	for rs.Next() {
		r := ContentRow{Type: RowTypeTeamMember}
		if err := rs.Scan(&r.ID, &r.Name, &r.Role, &r.Description, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rs.Err()
}
