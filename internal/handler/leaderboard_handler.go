package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/career-readiness-api/internal/middleware"
	"github.com/noah-isme/career-readiness-api/internal/models"
	"github.com/noah-isme/career-readiness-api/internal/service"
	"github.com/noah-isme/career-readiness-api/pkg/response"
)

type leaderboardService interface {
	Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

type leaderboardExporter interface {
	ExportLeaderboard(ctx context.Context, limit int, format string) (*service.ExportFile, error)
}

// LeaderboardHandler serves the readiness leaderboard.
type LeaderboardHandler struct {
	leaderboard leaderboardService
	exports     leaderboardExporter
}

// NewLeaderboardHandler constructs LeaderboardHandler.
func NewLeaderboardHandler(leaderboard leaderboardService, exports leaderboardExporter) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard, exports: exports}
}

// Top godoc
// @Summary Readiness leaderboard
// @Tags Leaderboard
// @Produce json
// @Param limit query int false "Entries to return (max 100)"
// @Success 200 {object} response.Envelope
// @Router /leaderboard [get]
func (h *LeaderboardHandler) Top(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, err := h.leaderboard.Top(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download the leaderboard
// @Tags Leaderboard
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param limit query int false "Entries to include"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /leaderboard/export [get]
func (h *LeaderboardHandler) Export(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.ExportLeaderboard(c.Request.Context(), limit, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
