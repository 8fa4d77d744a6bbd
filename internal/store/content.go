package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Commodity is a structured commodity catalogue entry.
type Commodity struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// FAQ is a question/answer pair.
type FAQ struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// Resource is a curated knowledge resource.
type Resource struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        string    `json:"tags"`
	Category    string    `json:"category"`
	URL         string    `json:"url"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
}

// ForumPost is a community forum entry.
type ForumPost struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Store) CreateCommodity(ctx context.Context, name, description, category string) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.ExecContext(ctx, `INSERT INTO commodities (id, name, description, category) VALUES ($1,$2,$3,$4)`, id, name, description, category)
	return id, err
}

func (s *Store) ListCommodities(ctx context.Context) ([]Commodity, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, description, COALESCE(category,''), created_at FROM commodities ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Commodity
	for rows.Next() {
		var c Commodity
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Category, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateFAQ(ctx context.Context, question, answer string) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.ExecContext(ctx, `INSERT INTO faqs (id, question, answer) VALUES ($1,$2,$3)`, id, question, answer)
	return id, err
}

func (s *Store) ListFAQs(ctx context.Context) ([]FAQ, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, question, answer, created_at FROM faqs ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FAQ
	for rows.Next() {
		var f FAQ
		if err := rows.Scan(&f.ID, &f.Question, &f.Answer, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) CreateResource(ctx context.Context, r Resource) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO resources (id, title, description, tags, category, url, author) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		id, r.Title, r.Description, r.Tags, r.Category, r.URL, r.Author)
	return id, err
}

func (s *Store) ListResources(ctx context.Context) ([]Resource, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, title, description, COALESCE(tags,''), COALESCE(category,''), COALESCE(url,''), COALESCE(author,''), created_at FROM resources ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Resource
	for rows.Next() {
		var r Resource
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.Tags, &r.Category, &r.URL, &r.Author, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) CreateForumPost(ctx context.Context, title, body, author string) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.ExecContext(ctx, `INSERT INTO forum_posts (id, title, body, author) VALUES ($1,$2,$3,$4)`, id, title, body, author)
	return id, err
}

func (s *Store) ListForumPosts(ctx context.Context) ([]ForumPost, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, title, body, COALESCE(author,''), created_at FROM forum_posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ForumPost
	for rows.Next() {
		var p ForumPost
		if err := rows.Scan(&p.ID, &p.Title, &p.Body, &p.Author, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
