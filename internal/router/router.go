// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chains of the
// campaign API. Generation routes share a per-IP rate limiter; everything
// else is only subject to the global middleware.
package router

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/elyriond/llmmail/internal/handlers"
	"github.com/elyriond/llmmail/internal/middleware"
)

// Handlers groups the endpoint implementations.
type Handlers struct {
	Campaign  *handlers.Campaign
	Images    *handlers.Images
	Dressipi  *handlers.Dressipi
	Templates *handlers.Templates
	Settings  *handlers.Settings
	Status    *handlers.Status
}

// Options tune the router.
type Options struct {
	// CORSOrigins lists the origins allowed to call the API.
	CORSOrigins []string
	// Limiter throttles generation routes. Nil disables throttling.
	Limiter *middleware.RateLimiter
	// ImagesDir is served under /images/ when set.
	ImagesDir string
}

// New creates the chi router with all middleware and routes wired up.
func New(h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler)

	if opts.ImagesDir != "" {
		files := http.StripPrefix("/images/", http.FileServer(noListing{http.Dir(opts.ImagesDir)}))
		r.Handle("/images/*", files)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/test", h.Status.Test)

		// Generation: rate limited.
		r.Group(func(r chi.Router) {
			if opts.Limiter != nil {
				r.Use(opts.Limiter.Middleware)
			}
			r.Post("/generate-email", h.Campaign.GenerateEmail)
			r.Post("/generate-email/stream", h.Campaign.GenerateEmailStream)
			r.Post("/refine-brief", h.Campaign.RefineBrief)
			r.Post("/refine-brief/stream", h.Campaign.RefineBriefStream)
			r.Post("/generate-image", h.Images.GenerateImage)
			r.Post("/generate-campaign-images", h.Images.GenerateCampaignImages)
			r.Post("/settings/scan", h.Settings.Scan)
		})

		// Dressipi
		r.Get("/dressipi/related", h.Dressipi.Related)
		r.Post("/dressipi/cache/flush", h.Dressipi.FlushCache)

		// Templates
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", h.Templates.List)
			r.Post("/", h.Templates.Create)
			r.Get("/{id}", h.Templates.Get)
			r.Put("/{id}", h.Templates.Update)
			r.Delete("/{id}", h.Templates.Delete)
			r.Post("/{id}/preview", h.Templates.Preview)
		})

		// Look & feel presets
		r.Get("/look-feel", h.Templates.ListLookAndFeel)
		r.Post("/look-feel", h.Templates.CreateLookAndFeel)
		r.Delete("/look-feel/{id}", h.Templates.DeleteLookAndFeel)

		// Settings
		r.Get("/settings", h.Settings.Get)
		r.Put("/settings", h.Settings.Update)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// noListing hides directory indexes of the image directory.
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	if strings.HasSuffix(name, "/") {
		return nil, fs.ErrNotExist
	}
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	if st, err := f.Stat(); err == nil && st.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
