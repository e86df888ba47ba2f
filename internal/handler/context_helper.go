package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/career-readiness-api/internal/middleware"
	"github.com/noah-isme/career-readiness-api/internal/models"
	appErrors "github.com/noah-isme/career-readiness-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// bindJSON decodes the request body, reporting malformed payloads as validation errors.
func bindJSON(c *gin.Context, dest interface{}, message string) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	return nil
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, key+" must be an integer")
	}
	return v, nil
}

func parseCollection(raw string) (models.Collection, error) {
	switch c := models.Collection(raw); c {
	case models.CollectionProjects, models.CollectionCertifications, models.CollectionEvents, models.CollectionCodingLogs:
		return c, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "unknown collection "+strconv.Quote(raw))
}
