package api

import (
	"github.com/starford/ansuz/internal/category"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/post"
)

// SavePostRequest is the request body for creating or updating a post.
// Content is the full markdown document including front-matter; ID
// optionally overrides the derived id.
type SavePostRequest struct {
	Content string `json:"content" validate:"required"`
	ID      string `json:"id,omitempty"`
}

// PostResponse wraps a post together with any index warnings the save
// produced.
type PostResponse struct {
	Post     *post.Post      `json:"post" validate:"required"`
	Warnings []index.Warning `json:"warnings,omitempty"`
}

// PostListResponse wraps a post listing.
type PostListResponse struct {
	Posts []*post.Post `json:"posts" validate:"required"`
	Total int          `json:"total" example:"42" validate:"required"`
}

// CreateCategoryRequest is the request body for adding a category.
type CreateCategoryRequest struct {
	Name string `json:"name" example:"Trip Reports" validate:"required"`
}

// CategoryResponse is one category with its stable key.
type CategoryResponse struct {
	Key string `json:"key" example:"trip-reports" validate:"required"`
	category.Category
}

// CategoryListResponse wraps the registry contents.
type CategoryListResponse struct {
	Categories map[string]category.Category `json:"categories" validate:"required"`
}

// LatestUpdatesRequest replaces the index latest-updates block.
type LatestUpdatesRequest = index.LatestUpdates

// UploadAssetRequest is the request body for uploading a binary asset.
// Content is standard base64.
type UploadAssetRequest struct {
	Dir      string `json:"dir" example:"images-trip-report" validate:"required"`
	Filename string `json:"filename" example:"summit.png" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

// UploadAssetResponse is returned after a successful asset upload.
type UploadAssetResponse struct {
	Path string `json:"path" example:"images-trip-report/summit.png" validate:"required"`
	Size int    `json:"size" example:"12345" validate:"required"`
}

// VerifyResponse reports the outcome of a remote credential check.
type VerifyResponse struct {
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}
