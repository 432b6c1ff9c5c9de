package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/remolab/contracts-ledger/internal/auth"
	"github.com/remolab/contracts-ledger/internal/model"
	"github.com/remolab/contracts-ledger/internal/repository"
)

const profileKey = "identity.profile"

// Identity resolves the calling profile from a Bearer token or, failing
// that, the profile_id header, and loads the matching account. Requests
// without a resolvable, existing profile are rejected with 401.
func Identity(parser *auth.Parser, profiles *repository.ProfileRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		profileID := resolveProfileID(c, parser)
		if profileID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		profile, err := profiles.GetProfile(c.Request.Context(), profileID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(profileKey, *profile)
		c.Next()
	}
}

func resolveProfileID(c *gin.Context, parser *auth.Parser) uuid.UUID {
	header := c.GetHeader("Authorization")
	if parser != nil && strings.HasPrefix(header, "Bearer ") {
		id, err := parser.ProfileID(strings.TrimPrefix(header, "Bearer "))
		if err == nil {
			return id
		}
		return uuid.Nil
	}

	raw := c.GetHeader("profile_id")
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// MustProfile returns the authenticated profile stored by Identity.
func MustProfile(c *gin.Context) (model.Profile, bool) {
	value, exists := c.Get(profileKey)
	if !exists {
		return model.Profile{}, false
	}
	profile, ok := value.(model.Profile)
	return profile, ok
}
