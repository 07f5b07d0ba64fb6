// Package auth combines the two caller identities the API accepts: JWT
// bearer tokens for interactive users and per-organization API keys for
// automated agents.
package auth

import (
	"context"
	"net/http"
	"strings"

	"outreach_backend/internal/identity"
	"outreach_backend/platform/config"
	"outreach_backend/platform/httpkit"
	"outreach_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// APIKeyHeader carries the agent credential, formatted "<org-id>.<secret>".
const APIKeyHeader = "X-API-Key"

// AgentActor is the audit actor label for API key callers.
const AgentActor = "agent"

// OrganizationStore is the lookup surface the middleware needs.
type OrganizationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (identity.Organization, error)
}

// Middleware authenticates a request via API key when the X-API-Key header
// is present, otherwise via JWT bearer token. Both paths set the actor and
// tenant keys the handlers and the idempotency layer read.
func Middleware(cfg config.JWTConfig, orgs OrganizationStore, log *logger.Logger) gin.HandlerFunc {
	jwtAuth := httpkit.AuthRequired(cfg)

	return func(c *gin.Context) {
		apiKey := strings.TrimSpace(c.GetHeader(APIKeyHeader))
		if apiKey == "" {
			jwtAuth(c)
			return
		}

		orgID, secret, ok := splitAPIKey(apiKey)
		if !ok {
			abort(c)
			return
		}

		org, err := orgs.GetByID(c.Request.Context(), orgID)
		if err != nil {
			// Same response for unknown org and lookup failure, so the
			// header can't be used to probe tenant IDs.
			if log != nil {
				log.Warn("api key lookup failed", "error", err)
			}
			abort(c)
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(org.APIKeyHash), []byte(secret)) != nil {
			abort(c)
			return
		}

		c.Set(httpkit.ContextActorKey, AgentActor)
		c.Set(httpkit.ContextTenantIDKey, org.ID)
		c.Next()
	}
}

func splitAPIKey(raw string) (uuid.UUID, string, bool) {
	idPart, secret, found := strings.Cut(raw, ".")
	if !found || secret == "" {
		return uuid.Nil, "", false
	}
	orgID, err := uuid.Parse(idPart)
	if err != nil {
		return uuid.Nil, "", false
	}
	return orgID, secret, true
}

func abort(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
}
