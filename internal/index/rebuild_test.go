package index

import (
	"encoding/json"
	"testing"

	"github.com/starford/ansuz/internal/category"
	"github.com/starford/ansuz/internal/post"
)

func published(id, cat, date string) post.Post {
	return post.Post{
		ID:       id,
		Title:    id,
		Category: cat,
		Date:     date,
		Status:   post.StatusPublished,
		File:     "static-blog/" + cat + "/" + id + ".txt",
	}
}

func TestRebuild_OrdersByDateDescending(t *testing.T) {
	posts := []post.Post{
		published("a", "technical", "2024-01-01"),
		published("b", "technical", "2023-12-31"),
		published("c", "technical", "2024-06-15"),
	}
	ix, warnings := Rebuild(posts, category.NewRegistry(nil), nil)
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	got := []string{ix.Posts[0].ID, ix.Posts[1].ID, ix.Posts[2].ID}
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestRebuild_StableOnDateTies(t *testing.T) {
	posts := []post.Post{
		published("first", "c", "2024-01-01"),
		published("second", "c", "2024-01-01"),
		published("third", "c", "2024-01-01"),
	}
	ix, _ := Rebuild(posts, category.NewRegistry(nil), nil)
	for i, want := range []string{"first", "second", "third"} {
		if ix.Posts[i].ID != want {
			t.Fatalf("tie order = %v", ix.Posts)
		}
	}
}

func TestRebuild_ExcludesDrafts(t *testing.T) {
	posts := []post.Post{
		published("live", "c", "2020-01-01"),
		{ID: "hidden", Category: "c", Date: "2030-01-01", Status: post.StatusDraft},
	}
	ix, _ := Rebuild(posts, category.NewRegistry(nil), nil)
	if len(ix.Posts) != 1 || ix.Posts[0].ID != "live" {
		t.Errorf("posts = %v, drafts must never be listed", ix.Posts)
	}
}

func TestRebuild_AutoCreatesCategory(t *testing.T) {
	posts := []post.Post{published("bench", "woodworking", "2024-01-01")}
	ix, _ := Rebuild(posts, category.NewRegistry(nil), nil)

	c, ok := ix.Categories["woodworking"]
	if !ok {
		t.Fatal("missing auto-created category")
	}
	if c.Name != "Woodworking" || c.Description != "Woodworking posts" {
		t.Errorf("category = %+v", c)
	}
	valid := false
	for _, color := range category.Palette {
		if c.Color == color {
			valid = true
		}
	}
	if !valid {
		t.Errorf("color %q not in palette", c.Color)
	}
}

func TestRebuild_PreservesLatestUpdates(t *testing.T) {
	prev := &LatestUpdates{Reading: []string{"Dune"}, Building: []string{"a blog engine"}}
	ix, _ := Rebuild(nil, category.NewRegistry(nil), prev)
	if ix.LatestUpdates == nil || ix.LatestUpdates.Reading[0] != "Dune" {
		t.Errorf("latestUpdates = %+v, want carried over", ix.LatestUpdates)
	}
}

func TestRebuild_SkipsBadPostWithWarning(t *testing.T) {
	posts := []post.Post{
		published("good", "c", "2024-01-01"),
		{ID: "", Category: "c", Date: "2024-01-01", Status: post.StatusPublished, File: "broken.md"},
		published("baddate", "c", "not-a-date"),
	}
	ix, warnings := Rebuild(posts, category.NewRegistry(nil), nil)
	if len(ix.Posts) != 2 {
		t.Errorf("posts = %v, want good+baddate listed", ix.Posts)
	}
	if len(warnings) != 2 {
		t.Errorf("warnings = %v, want two", warnings)
	}
}

func TestMarshal_OmitsEmptyLatestUpdates(t *testing.T) {
	ix, _ := Rebuild(nil, category.NewRegistry(nil), &LatestUpdates{})
	data, err := ix.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if _, ok := doc["latestUpdates"]; ok {
		t.Error("empty latestUpdates should be omitted")
	}
	if _, ok := doc["posts"]; !ok {
		t.Error("posts key must always be present")
	}
	if _, ok := doc["categories"]; !ok {
		t.Error("categories key must always be present")
	}
}

func TestUnmarshal_ToleratesMissingKeys(t *testing.T) {
	ix, err := Unmarshal([]byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	if ix.Posts == nil || ix.Categories == nil {
		t.Errorf("missing keys should default to empty: %+v", ix)
	}
}
