package post

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/frontmatter"
)

func TestBuild_FullDocument(t *testing.T) {
	raw := "---\n" +
		"title: \"Hello World\"\n" +
		"category: \"technical\"\n" +
		"date: \"2024-03-01\"\n" +
		"excerpt: \"A greeting\"\n" +
		"tags: [\"go\", \"intro\"]\n" +
		"---\n\n" +
		strings.TrimSpace(strings.Repeat("word ", 300)) + "\n"

	p, err := Build(raw, "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.ID != "hello-world" {
		t.Errorf("id = %q, want hello-world", p.ID)
	}
	if p.ReadTime != "2 min read" {
		t.Errorf("readTime = %q, want 2 min read", p.ReadTime)
	}
	if p.Status != StatusPublished {
		t.Errorf("status = %q, want published (legacy default)", p.Status)
	}
	if !reflect.DeepEqual(p.Tags, []string{"go", "intro"}) {
		t.Errorf("tags = %v", p.Tags)
	}
	if p.Excerpt != "A greeting" {
		t.Errorf("excerpt = %q", p.Excerpt)
	}
}

func TestBuild_MissingRequiredFields(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		field string
	}{
		{"no title", "---\ncategory: \"c\"\ndate: \"2024-01-01\"\n---\nb", "title"},
		{"no category", "---\ntitle: \"T\"\ndate: \"2024-01-01\"\n---\nb", "category"},
		{"no date", "---\ntitle: \"T\"\ncategory: \"c\"\n---\nb", "date"},
		{"no frontmatter at all", "just a body", "title"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.raw, "")
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if verr.Field != tc.field {
				t.Errorf("field = %q, want %q", verr.Field, tc.field)
			}
		})
	}
}

func TestBuild_IDPrecedence(t *testing.T) {
	raw := "---\ntitle: \"Some Title\"\ncategory: \"c\"\ndate: \"2024-01-01\"\nslug: \"custom-slug\"\n---\nbody"

	p, err := Build(raw, "")
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != "custom-slug" {
		t.Errorf("id = %q, want frontmatter slug", p.ID)
	}

	p, err = Build(raw, "supplied-id")
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != "supplied-id" {
		t.Errorf("id = %q, want supplied id to win", p.ID)
	}
}

func TestBuild_ReadTimeOverrideKept(t *testing.T) {
	raw := "---\ntitle: \"T\"\ncategory: \"c\"\ndate: \"2024-01-01\"\nreadTime: \"30 min read\"\n---\nshort body"
	p, err := Build(raw, "")
	if err != nil {
		t.Fatal(err)
	}
	if p.ReadTime != "30 min read" {
		t.Errorf("readTime = %q, want user override kept", p.ReadTime)
	}
}

func TestBuild_DraftStatus(t *testing.T) {
	raw := "---\ntitle: \"T\"\ncategory: \"c\"\ndate: \"2024-01-01\"\nstatus: \"draft\"\n---\nbody"
	p, err := Build(raw, "")
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != StatusDraft {
		t.Errorf("status = %q, want draft", p.Status)
	}
}

func TestBuild_ExtraFieldsPreserved(t *testing.T) {
	raw := "---\ntitle: \"T\"\ncategory: \"c\"\ndate: \"2024-01-01\"\nauthor: \"rishabh\"\ncover: \"img.png\"\n---\nbody"
	p, err := Build(raw, "")
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Extra.Scalar("author"); got != "rishabh" {
		t.Errorf("extra author = %q", got)
	}
	if got := p.Extra.Scalar("cover"); got != "img.png" {
		t.Errorf("extra cover = %q", got)
	}
}

func TestEncode_RoundTripsThroughBuild(t *testing.T) {
	p := &Post{
		ID:       "hello-world",
		Title:    "Hello World",
		Category: "technical",
		Date:     "2024-03-01",
		Excerpt:  "A greeting",
		Tags:     []string{"go"},
		ReadTime: "2 min read",
		Status:   StatusDraft,
		Content:  "# Hello\n\nBody.\n",
		Extra:    frontmatter.Fields{{Key: "author", Value: frontmatter.String("rishabh")}},
	}

	rebuilt, err := Build(p.Encode(), "")
	if err != nil {
		t.Fatalf("Build(Encode): %v", err)
	}
	if rebuilt.ID != p.ID || rebuilt.Title != p.Title || rebuilt.Category != p.Category {
		t.Errorf("identity fields changed: %+v", rebuilt)
	}
	if rebuilt.Status != StatusDraft {
		t.Errorf("status = %q, want draft survives", rebuilt.Status)
	}
	if rebuilt.ReadTime != "2 min read" {
		t.Errorf("readTime = %q, want kept, not recomputed", rebuilt.ReadTime)
	}
	if rebuilt.Content != p.Content {
		t.Errorf("content = %q", rebuilt.Content)
	}
	if got := rebuilt.Extra.Scalar("author"); got != "rishabh" {
		t.Errorf("extra author = %q", got)
	}
}

func TestEncode_PublishedOmitsStatus(t *testing.T) {
	p := &Post{Title: "T", Category: "c", Date: "2024-01-01", ReadTime: "1 min read", Status: StatusPublished}
	if strings.Contains(p.Encode(), "status:") {
		t.Errorf("published post should not carry a status field:\n%s", p.Encode())
	}
}
