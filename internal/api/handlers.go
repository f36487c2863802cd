package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/blog"
	"github.com/starford/ansuz/internal/category"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/post"
	"github.com/starford/ansuz/internal/remote"
)

// Handler holds API route handlers.
type Handler struct {
	svc *blog.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *blog.Service) *Handler {
	return &Handler{svc: svc}
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error, op string) {
	var verr *post.ValidationError
	var nerr *category.InvalidNameError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.As(err, &nerr):
		writeError(w, http.StatusBadRequest, nerr.Error())
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrDuplicateCategory):
		writeError(w, http.StatusConflict, "category already exists")
	case errors.Is(err, apperr.ErrCategoryInUse):
		writeError(w, http.StatusConflict, "category has posts")
	case errors.Is(err, apperr.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ListPosts handles GET /api/posts.
//
//	@Summary		List all posts, drafts included
//	@Tags			posts
//	@Produce		json
//	@Success		200	{object}	PostListResponse
//	@Security		BearerAuth
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts := h.svc.Posts(r.Context())
	writeJSON(w, http.StatusOK, PostListResponse{Posts: posts, Total: len(posts)})
}

// GetPost handles GET /api/posts/{id}.
//
//	@Summary		Get a single post by id
//	@Tags			posts
//	@Produce		json
//	@Param			id	path		string	true	"Post id"
//	@Success		200	{object}	PostResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{id} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "get post")
		return
	}
	writeJSON(w, http.StatusOK, PostResponse{Post: p})
}

// CreatePost handles POST /api/posts.
//
//	@Summary		Create a post from a markdown document
//	@Tags			posts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SavePostRequest	true	"Document to save"
//	@Success		201		{object}	PostResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts [post]
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req SavePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	p, warnings, err := h.svc.SavePost(r.Context(), req.Content, req.ID)
	if err != nil {
		writeServiceError(w, err, "create post")
		return
	}
	writeJSON(w, http.StatusCreated, PostResponse{Post: p, Warnings: warnings})
}

// UpdatePost handles PUT /api/posts/{id}.
//
//	@Summary		Replace an existing post's document
//	@Tags			posts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Post id"
//	@Param			body	body		SavePostRequest	true	"Replacement document"
//	@Success		200		{object}	PostResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{id} [put]
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	id := chi.URLParam(r, "id")
	if _, err := h.svc.GetPost(r.Context(), id); err != nil {
		writeServiceError(w, err, "update post")
		return
	}
	var req SavePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	p, warnings, err := h.svc.SavePost(r.Context(), req.Content, id)
	if err != nil {
		writeServiceError(w, err, "update post")
		return
	}
	writeJSON(w, http.StatusOK, PostResponse{Post: p, Warnings: warnings})
}

// DeletePost handles DELETE /api/posts/{id}.
//
//	@Summary		Delete a post
//	@Tags			posts
//	@Param			id	path	string	true	"Post id"
//	@Success		204	"Post deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{id} [delete]
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePost(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err, "delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PublishPost handles POST /api/posts/{id}/publish.
//
//	@Summary		Publish a draft
//	@Tags			posts
//	@Produce		json
//	@Param			id	path		string	true	"Post id"
//	@Success		200	{object}	PostResponse
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{id}/publish [post]
func (h *Handler) PublishPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Publish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "publish post")
		return
	}
	writeJSON(w, http.StatusOK, PostResponse{Post: p})
}

// UnpublishPost handles POST /api/posts/{id}/unpublish.
//
//	@Summary		Move a published post back to drafts
//	@Tags			posts
//	@Produce		json
//	@Param			id	path		string	true	"Post id"
//	@Success		200	{object}	PostResponse
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{id}/unpublish [post]
func (h *Handler) UnpublishPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Unpublish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "unpublish post")
		return
	}
	writeJSON(w, http.StatusOK, PostResponse{Post: p})
}

// ListCategories handles GET /api/categories.
//
//	@Summary		List all categories
//	@Tags			categories
//	@Produce		json
//	@Success		200	{object}	CategoryListResponse
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CategoryListResponse{Categories: h.svc.Categories(r.Context())})
}

// CreateCategory handles POST /api/categories.
//
//	@Summary		Add a category
//	@Tags			categories
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateCategoryRequest	true	"Category to add"
//	@Success		201		{object}	CategoryResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories [post]
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	key, entry, err := h.svc.AddCategory(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, err, "create category")
		return
	}
	writeJSON(w, http.StatusCreated, CategoryResponse{Key: key, Category: entry})
}

// DeleteCategory handles DELETE /api/categories/{key}.
//
//	@Summary		Remove an empty category
//	@Tags			categories
//	@Param			key	path	string	true	"Category key"
//	@Success		204	"Category removed"
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories/{key} [delete]
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveCategory(r.Context(), chi.URLParam(r, "key")); err != nil {
		writeServiceError(w, err, "delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetLatestUpdates handles GET /api/latest-updates.
//
//	@Summary		Read the index latest-updates block
//	@Tags			index
//	@Produce		json
//	@Success		200	{object}	index.LatestUpdates
//	@Security		BearerAuth
//	@Router			/latest-updates [get]
func (h *Handler) GetLatestUpdates(w http.ResponseWriter, r *http.Request) {
	lu := h.svc.LatestUpdates(r.Context())
	if lu == nil {
		lu = &index.LatestUpdates{}
	}
	writeJSON(w, http.StatusOK, lu)
}

// SetLatestUpdates handles PUT /api/latest-updates.
//
//	@Summary		Replace the index latest-updates block
//	@Tags			index
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LatestUpdatesRequest	true	"New block"
//	@Success		200		{object}	index.LatestUpdates
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/latest-updates [put]
func (h *Handler) SetLatestUpdates(w http.ResponseWriter, r *http.Request) {
	var req LatestUpdatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.svc.SetLatestUpdates(r.Context(), req)
	writeJSON(w, http.StatusOK, req)
}

// GetIndex handles GET /api/index.
//
//	@Summary		Read the current site index
//	@Tags			index
//	@Produce		json
//	@Success		200	{object}	index.Index
//	@Security		BearerAuth
//	@Router			/index [get]
func (h *Handler) GetIndex(w http.ResponseWriter, r *http.Request) {
	ix := h.svc.Index(r.Context())
	if ix == nil {
		writeJSON(w, http.StatusOK, &index.Index{
			Categories: map[string]category.Category{},
			Posts:      []index.Entry{},
		})
		return
	}
	writeJSON(w, http.StatusOK, ix)
}

// RebuildIndex handles POST /api/index/rebuild.
//
//	@Summary		Regenerate and persist the site index
//	@Tags			index
//	@Produce		json
//	@Success		200	{object}	index.Index
//	@Security		BearerAuth
//	@Router			/index/rebuild [post]
func (h *Handler) RebuildIndex(w http.ResponseWriter, r *http.Request) {
	ix, warnings, err := h.svc.RebuildIndex(r.Context())
	if err != nil {
		writeServiceError(w, err, "rebuild index")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"index":    ix,
		"warnings": warnings,
	})
}

// UploadAsset handles POST /api/assets.
//
//	@Summary		Upload a binary asset (base64 body)
//	@Tags			assets
//	@Accept			json
//	@Produce		json
//	@Param			body	body		UploadAssetRequest	true	"Asset to store"
//	@Success		201		{object}	UploadAssetResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/assets [post]
func (h *Handler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 50<<20)
	var req UploadAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Dir == "" || req.Filename == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "dir, filename, and content are required")
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		writeError(w, http.StatusBadRequest, "content must be base64")
		return
	}
	path, err := h.svc.UploadAsset(r.Context(), req.Dir, req.Filename, data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, UploadAssetResponse{Path: path, Size: len(data)})
}

// Sync handles POST /api/sync.
//
//	@Summary		Push staged edits to the remote repository
//	@Tags			sync
//	@Produce		json
//	@Success		200	{object}	blog.SyncReport
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sync [post]
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.SyncRemote(r.Context())
	if err != nil {
		slog.Error("sync failed", slog.String("error", err.Error()))
		writeError(w, http.StatusServiceUnavailable, "sync unavailable: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Verify handles GET /api/verify.
//
//	@Summary		Check the remote credential
//	@Tags			sync
//	@Produce		json
//	@Success		200	{object}	VerifyResponse
//	@Failure		401	{object}	VerifyResponse
//	@Failure		403	{object}	VerifyResponse
//	@Security		BearerAuth
//	@Router			/verify [get]
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	err := h.svc.VerifyRemote(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, VerifyResponse{OK: true})
	case errors.Is(err, remote.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, VerifyResponse{
			OK:     false,
			Detail: "token rejected: generate a new access token and update the configuration",
		})
	case errors.Is(err, remote.ErrForbidden):
		writeJSON(w, http.StatusForbidden, VerifyResponse{
			OK:     false,
			Detail: "token lacks repository access: grant contents read/write on the content repo",
		})
	default:
		slog.Error("verify failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, VerifyResponse{
			OK:     false,
			Detail: "could not reach the remote: " + err.Error(),
		})
	}
}
