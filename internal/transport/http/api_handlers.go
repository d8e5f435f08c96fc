package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirebattle-server/internal/store"
)

const (
	defaultMatchLimit = 20
	maxMatchLimit     = 100
)

// APIHandlers provides read-only HTTP handlers over the hub and match ledger.
type APIHandlers struct {
	hub   Battle
	store store.MatchStore
	log   *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(hub Battle, st store.MatchStore, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		hub:   hub,
		store: st,
		log:   logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Stats reports live counters and ledger totals.
// GET /api/stats
func (h *APIHandlers) Stats(c *gin.Context) {
	live := h.hub.Stats()
	totals, err := h.store.Totals(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load totals")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		Online:          live.Online,
		Named:           live.Named,
		Idle:            live.Idle,
		InMatch:         live.InMatch,
		MatchesFinished: live.Matches,
		MatchesRecorded: totals.Matches,
		Forfeits:        totals.Forfeits,
	})
}

// RecentMatches lists finished matches, newest first.
// GET /api/matches?limit=N
func (h *APIHandlers) RecentMatches(c *gin.Context) {
	limit := defaultMatchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxMatchLimit)
	}

	matches, err := h.store.RecentMatches(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list matches")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, matchesFromStore(matches))
}

// Player reports one display name's record.
// GET /api/players/:name
func (h *APIHandlers) Player(c *gin.Context) {
	name := c.Param("name")
	rec, err := h.store.PlayerRecord(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "player not found"})
			return
		}
		h.log.Error().Err(err).Str("name", name).Msg("failed to load player record")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, playerFromStore(rec))
}
