package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/career-readiness-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "readiness:s1", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "readiness:s1", map[string]int{"score": 40}, time.Minute))
	assert.NoError(t, repo.DeleteKeys(ctx, "readiness:s1"))
	assert.NoError(t, repo.DeleteByPattern(ctx, "leaderboard:*"))
}
