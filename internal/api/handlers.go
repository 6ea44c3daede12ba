// Venditio - Product Recommendations for E-Commerce Catalogs
// Copyright 2026 The Venditio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venditio/venditio

package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/venditio/venditio/internal/logging"
)

// TrackingStore is the view-tracking write and read surface the handlers
// need from the database.
type TrackingStore interface {
	UpsertView(ctx context.Context, userID, productID string) error
	UpsertViews(ctx context.Context, userID string, productIDs []string) error
	UserHistory(ctx context.Context, userID string, limit int) ([]string, error)
}

// Recommender is the strategy surface the handlers expose. Strategies
// never fail; an empty slice is a valid answer.
type Recommender interface {
	BestSellers(ctx context.Context, limit int) []string
	Trending(ctx context.Context, limit int) []string
	PurchaseBased(ctx context.Context, userID string, limit int) []string
	HistoryBased(ctx context.Context, viewedIDs []string, limit int) []string
	UserCollaborative(ctx context.Context, userID string, limit int) []string
}

// Pinger reports storage liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler carries the dependencies for all HTTP endpoints.
type Handler struct {
	tracking     TrackingStore
	recommender  Recommender
	pinger       Pinger
	defaultLimit int
	maxLimit     int
}

// HandlerConfig bounds the limit query parameter.
type HandlerConfig struct {
	DefaultLimit int
	MaxLimit     int
}

func NewHandler(tracking TrackingStore, recommender Recommender, pinger Pinger, cfg HandlerConfig) *Handler {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 8
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 50
	}
	return &Handler{
		tracking:     tracking,
		recommender:  recommender,
		pinger:       pinger,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
	}
}

type viewRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
}

type syncRequest struct {
	UserID    string   `json:"user_id"`
	ViewedIDs []string `json:"viewed_ids"`
}

type historyRequest struct {
	ViewedIDs []string `json:"viewed_ids"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Count   int    `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
}

// Root identifies the service.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Venditio recommendation service"})
}

// Healthz reports liveness including a storage ping.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.pinger.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "degraded", Message: "database unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// TrackView records one view event for a signed-in user.
func (h *Handler) TrackView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validUUID(req.UserID) || !validUUID(req.ProductID) {
		writeError(w, http.StatusBadRequest, "user_id and product_id must be UUIDs")
		return
	}

	if err := h.tracking.UpsertView(r.Context(), req.UserID, req.ProductID); err != nil {
		logging.Error().Err(err).Msg("Failed to record product view")
		writeJSON(w, http.StatusOK, statusResponse{Status: "error"})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "success"})
}

// SyncHistory merges a guest's locally tracked views into the account
// after login. An empty batch is acknowledged without touching storage.
func (h *Handler) SyncHistory(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.ViewedIDs) == 0 {
		writeJSON(w, http.StatusOK, statusResponse{Status: "skipped"})
		return
	}
	if !validUUID(req.UserID) {
		writeError(w, http.StatusBadRequest, "user_id must be a UUID")
		return
	}
	for _, id := range req.ViewedIDs {
		if !validUUID(id) {
			writeError(w, http.StatusBadRequest, "viewed_ids must be UUIDs")
			return
		}
	}

	if err := h.tracking.UpsertViews(r.Context(), req.UserID, req.ViewedIDs); err != nil {
		logging.Error().Err(err).Msg("Failed to sync view history")
		writeJSON(w, http.StatusOK, statusResponse{Status: "error"})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "synced", Count: len(req.ViewedIDs)})
}

// UserHistory returns the user's most recently viewed products.
func (h *Handler) UserHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !validUUID(userID) {
		writeError(w, http.StatusBadRequest, "userID must be a UUID")
		return
	}
	limit := h.limitParam(r, 10)

	ids, err := h.tracking.UserHistory(r.Context(), userID, limit)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load view history")
		writeIDs(w, nil)
		return
	}
	writeIDs(w, ids)
}

// BestSellers serves the global best-seller ranking.
func (h *Handler) BestSellers(w http.ResponseWriter, r *http.Request) {
	writeIDs(w, h.recommender.BestSellers(r.Context(), h.limitParam(r, h.defaultLimit)))
}

// Trending serves the recent-views ranking.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	writeIDs(w, h.recommender.Trending(r.Context(), h.limitParam(r, h.defaultLimit)))
}

// PurchaseBased recommends from the categories of the user's past orders.
func (h *Handler) PurchaseBased(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !validUUID(userID) {
		writeError(w, http.StatusBadRequest, "userID must be a UUID")
		return
	}
	writeIDs(w, h.recommender.PurchaseBased(r.Context(), userID, h.limitParam(r, h.defaultLimit)))
}

// HistoryBased recommends from the categories of an explicit viewed-ID
// list, so guests without an account get personalized results too.
func (h *Handler) HistoryBased(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeIDs(w, h.recommender.HistoryBased(r.Context(), req.ViewedIDs, h.limitParam(r, h.defaultLimit)))
}

// UserCollaborative recommends what similar users viewed.
func (h *Handler) UserCollaborative(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !validUUID(userID) {
		writeError(w, http.StatusBadRequest, "userID must be a UUID")
		return
	}
	writeIDs(w, h.recommender.UserCollaborative(r.Context(), userID, h.limitParam(r, h.defaultLimit)))
}

// limitParam parses ?limit=, clamping to [1, maxLimit] with fallback on
// absent or malformed values.
func (h *Handler) limitParam(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	if n > h.maxLimit {
		return h.maxLimit
	}
	return n
}

func validUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeIDs always serializes a non-nil array so clients never see null.
func writeIDs(w http.ResponseWriter, ids []string) {
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, statusResponse{Status: "error", Message: message})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")

	body, err := json.Marshal(data)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}
