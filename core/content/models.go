package content

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/ilmhub/ilm/core"
)

// Content types
const (
	TypeArticle = "article"
	TypeVideo   = "video"
	TypeAudio   = "audio"
	TypeBook    = "book"
	TypeLecture = "lecture"
)

// Statuses
const (
	StatusDraft         = "draft"
	StatusPendingReview = "pending_review"
	StatusPublished     = "published"
	StatusRejected      = "rejected"
	StatusArchived      = "archived"
)

var (
	Types     = []string{TypeArticle, TypeVideo, TypeAudio, TypeBook, TypeLecture}
	Statuses  = []string{StatusDraft, StatusPendingReview, StatusPublished, StatusRejected, StatusArchived}
	Languages = []string{"ar", "en"}
)

// Item is a row of content_items.
type Item struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Summary     string      `json:"summary"`
	Body        string      `json:"body"`
	ContentType string      `json:"content_type"`
	Category    string      `json:"category"`
	Tags        []string    `json:"tags"`
	Language    string      `json:"language"`
	MediaURL    string      `json:"media_url"`
	AuthorID    string      `json:"author_id"`
	Status      string      `json:"status"`
	ReviewNotes string      `json:"review_notes"`
	ReviewerID  null.String `json:"reviewer_id"`
	ViewsCount  int         `json:"views_count"`
	PublishedAt null.Time   `json:"published_at"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// IsEditable reports whether the body may still change.
func (it Item) IsEditable() bool {
	return it.Status == StatusDraft || it.Status == StatusRejected
}

type NewItem struct {
	Title       string   `json:"title" validate:"required,notblank,max=300"`
	Summary     string   `json:"summary" validate:"max=1000"`
	Body        string   `json:"body" validate:"max=200000"`
	ContentType string   `json:"content_type" validate:"required,contenttype"`
	Category    string   `json:"category" validate:"required,notblank,max=100"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=50"`
	Language    string   `json:"language" validate:"contentlang"`
	MediaURL    string   `json:"media_url" validate:"omitempty,url"`
}

func (ni *NewItem) Validate(validate *validator.Validate) error {
	ni.Title = core.CleanString(ni.Title)
	ni.Summary = core.CleanString(ni.Summary)
	ni.ContentType = core.CleanString(ni.ContentType, true /* lower */)
	ni.Category = core.CleanString(ni.Category, true /* lower */)
	ni.Tags = core.CleanStrings(ni.Tags, true /* lower */)
	ni.Language = core.CleanString(ni.Language, true /* lower */)
	ni.MediaURL = core.CleanString(ni.MediaURL)
	if ni.Language == "" {
		ni.Language = "ar"
	}
	return validate.Struct(ni)
}

// UpdateItem holds the fields to change. Nil fields are left untouched.
type UpdateItem struct {
	Title       *string  `json:"title" validate:"omitempty,notblank,max=300"`
	Summary     *string  `json:"summary" validate:"omitempty,max=1000"`
	Body        *string  `json:"body" validate:"omitempty,max=200000"`
	ContentType *string  `json:"content_type" validate:"omitempty,contenttype"`
	Category    *string  `json:"category" validate:"omitempty,notblank,max=100"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	Language    *string  `json:"language" validate:"omitempty,contentlang"`
	MediaURL    *string  `json:"media_url" validate:"omitempty"`
}

func (ui *UpdateItem) Validate(validate *validator.Validate) error {
	lower := func(p *string) *string {
		if p == nil {
			return nil
		}
		s := core.CleanString(*p, true)
		return &s
	}
	ui.ContentType = lower(ui.ContentType)
	ui.Language = lower(ui.Language)
	ui.Category = lower(ui.Category)
	return validate.Struct(ui)
}

func (ui UpdateItem) apply(it *Item) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = core.CleanString(*src)
		}
	}
	set(&it.Title, ui.Title)
	set(&it.Summary, ui.Summary)
	set(&it.ContentType, ui.ContentType)
	set(&it.Category, ui.Category)
	set(&it.Language, ui.Language)
	set(&it.MediaURL, ui.MediaURL)
	if ui.Body != nil {
		it.Body = *ui.Body
	}
	if ui.Tags != nil {
		it.Tags = core.CleanStrings(ui.Tags, true /* lower */)
	}
}

type QueryFilter struct {
	Search      string
	ContentType string
	Category    string
	Tag         string
	Language    string
	Status      string
	AuthorID    string

	// PublicOnly restricts results to published items, plus the items of VisibleAuthorID if set.
	PublicOnly      bool
	VisibleAuthorID string
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ContentType = core.CleanString(qf.ContentType, true /* lower */)
	qf.Category = core.CleanString(qf.Category, true /* lower */)
	qf.Tag = core.CleanString(qf.Tag, true /* lower */)
	qf.Language = core.CleanString(qf.Language, true /* lower */)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

var OrderingFields = []string{"title", "category", "views_count", "published_at", "created_at", "updated_at"}

// Taxonomy is the category and tags of a published item.
type Taxonomy struct {
	Category string
	Tags     []string
}
