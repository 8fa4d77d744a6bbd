// Package retrieval implements the content-similarity core of the knowledge
// hub: a TF-IDF corpus over heterogeneous content records and a blended
// ranker combining lexical, semantic and keyword signals.
package retrieval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/croplore/agrihub/internal/store"
	"github.com/croplore/agrihub/internal/textproc"
)

// ItemType tags the origin of a content item.
type ItemType string

const (
	TypeResource   ItemType = "resource"
	TypeForum      ItemType = "forum"
	TypeCommodity  ItemType = "commodity"
	TypeCMI        ItemType = "cmi"
	TypeFAQ        ItemType = "faq"
	TypeCategory   ItemType = "category"
	TypeTeamMember ItemType = "team_member"
)

// ErrEmptyText marks rows whose concatenated text normalizes to nothing.
// Such rows are excluded from the corpus.
var ErrEmptyText = errors.New("content row has no indexable text")

// ContentItem is the unit of retrieval: a normalized projection of a source
// record into the common shape the ranker scores against.
type ContentItem struct {
	ID             string
	Type           ItemType
	Title          string
	Description    string
	RawText        string
	NormalizedText string
	Keywords       map[string]struct{}
	Metadata       map[string]string
}

// NewContentItem projects a source row into a ContentItem, dispatching on
// the row's type tag. Unknown types and rows without text are rejected.
func NewContentItem(row store.ContentRow, n *textproc.Normalizer) (ContentItem, error) {
	var item ContentItem
	switch row.Type {
	case store.RowTypeResource:
		item = ContentItem{
			Type:        TypeResource,
			Title:       row.Title,
			Description: row.Description,
			RawText:     joinText(row.Title, row.Description, row.Tags, row.Category),
			Metadata:    metadata("url", row.URL, "author", row.Author, "category", row.Category),
		}
	case store.RowTypeForum:
		item = ContentItem{
			Type:        TypeForum,
			Title:       row.Title,
			Description: row.Description,
			RawText:     joinText(row.Title, row.Description),
			Metadata:    metadata("author", row.Author),
		}
	case store.RowTypeCommodity:
		item = ContentItem{
			Type:        TypeCommodity,
			Title:       row.Name,
			Description: row.Description,
			RawText:     joinText(row.Name, row.Description, row.Category),
			Metadata:    metadata("category", row.Category),
		}
	case store.RowTypeCMI:
		item = ContentItem{
			Type:        TypeCMI,
			Title:       row.Name,
			Description: row.Description,
			RawText:     joinText(row.Name, row.Description, row.Location),
			Metadata:    metadata("location", row.Location),
		}
	case store.RowTypeFAQ:
		item = ContentItem{
			Type:        TypeFAQ,
			Title:       row.Question,
			Description: row.Answer,
			RawText:     joinText(row.Question, row.Answer),
		}
	case store.RowTypeCategory:
		item = ContentItem{
			Type:        TypeCategory,
			Title:       row.Name,
			Description: row.Description,
			RawText:     joinText(row.Name, row.Description),
		}
	case store.RowTypeTeamMember:
		item = ContentItem{
			Type:        TypeTeamMember,
			Title:       row.Name,
			Description: row.Description,
			RawText:     joinText(row.Name, row.Role, row.Description),
			Metadata:    metadata("role", row.Role),
		}
	default:
		return ContentItem{}, fmt.Errorf("unknown content row type %q", row.Type)
	}

	item.ID = string(item.Type) + ":" + row.ID
	item.NormalizedText = n.Normalize(item.RawText)
	if item.NormalizedText == "" {
		return ContentItem{}, ErrEmptyText
	}
	item.Keywords = n.ExtractKeywords(item.RawText)
	return item, nil
}

func joinText(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

func metadata(kv ...string) map[string]string {
	m := make(map[string]string)
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			m[kv[i]] = kv[i+1]
		}
	}
	return m
}
