package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"sportsync/internal/model"
	"sportsync/internal/repository"
)

// Handler serves the read-only query surface over the aggregate views.
// It renders nothing itself; the dashboard consumes these endpoints. An
// empty database answers with empty lists, never an error.
type Handler struct {
	store  *repository.Store
	logger *logrus.Logger
}

func NewHandler(store *repository.Store, logger *logrus.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// NewRouter builds the gin engine with all query routes registered.
func NewRouter(store *repository.Store, logger *logrus.Logger) *gin.Engine {
	h := NewHandler(store, logger)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", h.Health)
	r.GET("/api/matches/recent", h.RecentMatches)
	r.GET("/api/matches", h.ListMatches)
	r.GET("/api/players/summary", h.PlayerSummaries)
	r.GET("/api/players/:id/stats", h.PlayerStats)
	r.GET("/api/teams/summary", h.TeamSummaries)
	return r
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RecentMatches serves the recent-matches view.
// GET /api/matches/recent?limit=20
func (h *Handler) RecentMatches(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	matches, err := h.store.RecentMatches(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("RecentMatches failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if matches == nil {
		matches = []model.Match{}
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// ListMatches serves filtered match queries.
// GET /api/matches?team_id=57&date_from=2026-08-01&date_to=2026-08-29
func (h *Handler) ListMatches(c *gin.Context) {
	ctx := c.Request.Context()

	if teamIDParam := c.Query("team_id"); teamIDParam != "" {
		teamID, err := strconv.ParseInt(teamIDParam, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "team_id must be an integer"})
			return
		}
		matches, err := h.store.MatchesByTeam(ctx, teamID)
		if err != nil {
			h.logger.WithError(err).Error("MatchesByTeam failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if matches == nil {
			matches = []model.Match{}
		}
		c.JSON(http.StatusOK, gin.H{"matches": matches})
		return
	}

	from, err := parseDate(c.Query("date_from"), time.Time{})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_from must be YYYY-MM-DD"})
		return
	}
	to, err := parseDate(c.Query("date_to"), time.Now().AddDate(0, 0, 1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_to must be YYYY-MM-DD"})
		return
	}
	matches, err := h.store.MatchesByDateRange(ctx, from, to)
	if err != nil {
		h.logger.WithError(err).Error("MatchesByDateRange failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if matches == nil {
		matches = []model.Match{}
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// PlayerSummaries serves the player aggregate view, one row or all.
// GET /api/players/summary?player_id=44
func (h *Handler) PlayerSummaries(c *gin.Context) {
	ctx := c.Request.Context()

	if playerIDParam := c.Query("player_id"); playerIDParam != "" {
		playerID, err := strconv.ParseInt(playerIDParam, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "player_id must be an integer"})
			return
		}
		summary, err := h.store.PlayerSummary(ctx, playerID)
		if err != nil {
			h.logger.WithError(err).Error("PlayerSummary failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		players := []model.PlayerSummary{}
		if summary != nil {
			players = append(players, *summary)
		}
		c.JSON(http.StatusOK, gin.H{"players": players})
		return
	}

	players, err := h.store.PlayerSummaries(ctx)
	if err != nil {
		h.logger.WithError(err).Error("PlayerSummaries failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if players == nil {
		players = []model.PlayerSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"players": players})
}

// PlayerStats serves one player's stored match lines.
// GET /api/players/:id/stats
func (h *Handler) PlayerStats(c *gin.Context) {
	playerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player id must be an integer"})
		return
	}
	stats, err := h.store.StatsByPlayer(c.Request.Context(), playerID)
	if err != nil {
		h.logger.WithError(err).Error("StatsByPlayer failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if stats == nil {
		stats = []model.PlayerStat{}
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// TeamSummaries serves the team aggregate view, one row or all.
// GET /api/teams/summary?team_id=57
func (h *Handler) TeamSummaries(c *gin.Context) {
	ctx := c.Request.Context()

	if teamIDParam := c.Query("team_id"); teamIDParam != "" {
		teamID, err := strconv.ParseInt(teamIDParam, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "team_id must be an integer"})
			return
		}
		summary, err := h.store.TeamSummary(ctx, teamID)
		if err != nil {
			h.logger.WithError(err).Error("TeamSummary failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		teams := []model.TeamSummary{}
		if summary != nil {
			teams = append(teams, *summary)
		}
		c.JSON(http.StatusOK, gin.H{"teams": teams})
		return
	}

	teams, err := h.store.TeamSummaries(ctx)
	if err != nil {
		h.logger.WithError(err).Error("TeamSummaries failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if teams == nil {
		teams = []model.TeamSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

func parseDate(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", s)
}
