// Package post defines the blog post domain type and the builder that
// turns a raw Markdown document into a validated Post.
package post

import (
	"fmt"

	"github.com/starford/ansuz/internal/frontmatter"
)

// Status is the publish state of a post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Post is a fully-populated blog post record.
type Post struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Date     string   `json:"date"`
	Excerpt  string   `json:"excerpt,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	ReadTime string   `json:"readTime"`
	Status   Status   `json:"status"`
	Content  string   `json:"content"`
	// File is the logical path where the document is persisted. It is
	// derived from status, category, and id by the owning service, not
	// by Build.
	File string `json:"file,omitempty"`

	// Extra holds front-matter fields the schema does not name, in their
	// original order, so editing a post does not lose them.
	Extra frontmatter.Fields `json:"-"`
}

// ValidationError reports a missing required front-matter field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required front-matter field: %s", e.Field)
}

// Front-matter keys the Post schema owns. Everything else lands in Extra.
var knownKeys = map[string]struct{}{
	"title":    {},
	"excerpt":  {},
	"category": {},
	"date":     {},
	"readTime": {},
	"tags":     {},
	"slug":     {},
	"status":   {},
}

// Build decodes raw Markdown into a Post. suppliedID, when non-empty,
// overrides both the front-matter slug and the title-derived id.
//
// title, category, and date are required; their absence is a
// ValidationError naming the field. readTime is kept verbatim when the
// author set it and estimated from the body otherwise. A document without
// a status field is published (the legacy rule: the pre-existing corpus
// carries no status and is live).
func Build(raw string, suppliedID string) (*Post, error) {
	fields, body := frontmatter.Decode(raw)

	for _, required := range []string{"title", "category", "date"} {
		if v, ok := fields.Get(required); !ok || v.Scalar() == "" {
			return nil, &ValidationError{Field: required}
		}
	}

	id := suppliedID
	if id == "" {
		id = fields.Scalar("slug")
	}
	if id == "" {
		id = Slug(fields.Scalar("title"))
	}

	readTime := fields.Scalar("readTime")
	if readTime == "" {
		readTime = EstimateReadTime(body)
	}

	status := StatusPublished
	if fields.Scalar("status") == string(StatusDraft) {
		status = StatusDraft
	}

	var tags []string
	if v, ok := fields.Get("tags"); ok {
		tags = v.Items()
	}

	var extra frontmatter.Fields
	for _, fl := range fields {
		if _, known := knownKeys[fl.Key]; !known {
			extra = append(extra, fl)
		}
	}

	return &Post{
		ID:       id,
		Title:    fields.Scalar("title"),
		Category: fields.Scalar("category"),
		Date:     fields.Scalar("date"),
		Excerpt:  fields.Scalar("excerpt"),
		Tags:     tags,
		ReadTime: readTime,
		Status:   status,
		Content:  body,
		Extra:    extra,
	}, nil
}

// Fields renders the post's metadata as canonical front-matter fields.
// Published is the default status, so only drafts carry an explicit
// status field.
func (p *Post) Fields() frontmatter.Fields {
	fields := frontmatter.Fields{
		{Key: "title", Value: frontmatter.String(p.Title)},
	}
	if p.Excerpt != "" {
		fields.Set("excerpt", frontmatter.String(p.Excerpt))
	}
	fields.Set("category", frontmatter.String(p.Category))
	fields.Set("date", frontmatter.String(p.Date))
	fields.Set("readTime", frontmatter.String(p.ReadTime))
	if len(p.Tags) > 0 {
		fields.Set("tags", frontmatter.List(p.Tags...))
	}
	if p.Status == StatusDraft {
		fields.Set("status", frontmatter.String(string(StatusDraft)))
	}
	for _, fl := range p.Extra {
		fields.Set(fl.Key, fl.Value)
	}
	return fields
}

// Encode renders the full Markdown document: canonical front matter, blank
// line, body.
func (p *Post) Encode() string {
	return frontmatter.Encode(p.Fields(), p.Content)
}
