// Package api exposes the item registry over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/iskkyy/LNFRP/internal/model"
	"github.com/iskkyy/LNFRP/internal/photos"
	"github.com/iskkyy/LNFRP/internal/store"
)

// ItemStore is the storage gateway used by the item handlers.
type ItemStore interface {
	ListItems(ctx context.Context) ([]model.Item, error)
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	CreateItem(ctx context.Context, f model.ItemFields) (*model.Item, error)
	UpdateItem(ctx context.Context, id int64, f model.ItemFields) error
	DeleteItem(ctx context.Context, id int64) (string, error)
	ItemPhotoKey(ctx context.Context, id int64) (string, error)
	SetItemPhoto(ctx context.Context, id int64, key string) (string, error)
}

// CredentialStore is the storage used by login, logout and the auth guard.
type CredentialStore interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

var (
	_ ItemStore       = (*store.Store)(nil)
	_ CredentialStore = (*store.Store)(nil)
)

// Deps holds everything the router needs.
type Deps struct {
	Items  ItemStore
	Photos photos.Store
	Logger zerolog.Logger

	// AuthEnabled gates the mutating item routes and mounts /login and /logout.
	AuthEnabled bool
	Credentials CredentialStore
	JWTSecret   string
	TokenExpiry time.Duration

	CORSOrigins []string
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(hlog.NewHandler(deps.Logger))
	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware())
	r.Use(recoveryMiddleware)
	r.Use(corsMiddleware(deps.CORSOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, ErrCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	items := &ItemsHandler{Store: deps.Items, Photos: deps.Photos}

	// guard is a no-op unless auth is enabled.
	guard := func(next http.Handler) http.Handler { return next }
	if deps.AuthEnabled {
		guard = AuthMiddleware(deps.JWTSecret, deps.Credentials)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Lost & Found API running..."))
	})

	r.Group(func(r chi.Router) {
		r.Use(bodySizeLimitMiddleware(maxRequestBodySize))

		r.Get("/items", items.List)
		r.Post("/items", items.Create)
		r.Get("/items/{id}", items.Get)

		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Put("/items/{id}", items.Update)
			r.Delete("/items/{id}", items.Delete)
		})

		if deps.AuthEnabled {
			authHandler := &AuthHandler{
				Credentials: deps.Credentials,
				JWTSecret:   deps.JWTSecret,
				TokenExpiry: deps.TokenExpiry,
			}
			r.Post("/login", authHandler.Login)
			r.With(guard).Post("/logout", authHandler.Logout)
		}
	})

	r.Get("/items/{id}/photo", items.GetPhoto)
	r.With(guard, bodySizeLimitMiddleware(maxPhotoRequestSize)).Put("/items/{id}/photo", items.UploadPhoto)

	return r
}
