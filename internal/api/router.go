package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/blog"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *blog.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Posts CRUD plus publish state transitions.
	r.Get("/posts", h.ListPosts)
	r.Post("/posts", h.CreatePost)
	r.Get("/posts/{id}", h.GetPost)
	r.Put("/posts/{id}", h.UpdatePost)
	r.Delete("/posts/{id}", h.DeletePost)
	r.Post("/posts/{id}/publish", h.PublishPost)
	r.Post("/posts/{id}/unpublish", h.UnpublishPost)

	// Categories.
	r.Get("/categories", h.ListCategories)
	r.Post("/categories", h.CreateCategory)
	r.Delete("/categories/{key}", h.DeleteCategory)

	// Index and latest-updates.
	r.Get("/index", h.GetIndex)
	r.Post("/index/rebuild", h.RebuildIndex)
	r.Get("/latest-updates", h.GetLatestUpdates)
	r.Put("/latest-updates", h.SetLatestUpdates)

	// Assets.
	r.Post("/assets", h.UploadAsset)

	// Remote sync.
	r.Post("/sync", h.Sync)
	r.Get("/verify", h.Verify)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
