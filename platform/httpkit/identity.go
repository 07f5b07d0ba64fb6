// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated caller's identity.
// This interface abstracts identity extraction from the web framework,
// allowing handlers to access caller information without depending on Gin.
type Identity interface {
	// TenantID returns the caller's organization ID, nil if unscoped.
	TenantID() *uuid.UUID
	// Actor returns the audit label for the caller ("agent" for API key
	// callers, the user UUID string for JWT callers).
	Actor() string
	// IsAuthenticated returns true if the caller is authenticated.
	IsAuthenticated() bool
}

// identity is the concrete implementation of Identity.
type identity struct {
	tenantID      *uuid.UUID
	actor         string
	authenticated bool
}

func (i *identity) TenantID() *uuid.UUID {
	return i.tenantID
}

func (i *identity) Actor() string {
	return i.actor
}

func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if caller info is not present.
func GetIdentity(c *gin.Context) Identity {
	actorValue, actorOK := c.Get(ContextActorKey)
	if !actorOK {
		return &identity{authenticated: false}
	}

	actor, ok := actorValue.(string)
	if !ok || actor == "" {
		return &identity{authenticated: false}
	}

	var tenantID *uuid.UUID
	if value, ok := c.Get(ContextTenantIDKey); ok {
		if id, ok := value.(uuid.UUID); ok {
			tenantID = &id
		}
	}

	return &identity{
		tenantID:      tenantID,
		actor:         actor,
		authenticated: true,
	}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the caller is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
