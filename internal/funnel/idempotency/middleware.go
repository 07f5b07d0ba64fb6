package idempotency

import (
	"bytes"
	"net/http"
	"time"

	"outreach_backend/platform/httpkit"
	"outreach_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// HeaderKey is the request header clients send to opt into replay.
const HeaderKey = "Idempotency-Key"

// ReplayedHeader marks a response served from the cache instead of executed.
const ReplayedHeader = "Idempotency-Replayed"

const maxKeyLength = 255

// bodyRecorder tees the response body so a successful response can be
// stored after the handler chain completes.
type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (r *bodyRecorder) Write(p []byte) (int, error) {
	r.buf.Write(p)
	return r.ResponseWriter.Write(p)
}

func (r *bodyRecorder) WriteString(s string) (int, error) {
	r.buf.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// Middleware replays stored responses for repeated Idempotency-Key values.
// Requests without the header pass through untouched. Only 2xx responses are
// stored: a failed attempt never poisons the key, so clients may retry the
// same key after an error.
func Middleware(cache Cache, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxKeyLength {
			httpkit.Error(c, http.StatusBadRequest, "idempotency key too long", nil)
			c.Abort()
			return
		}

		identity := httpkit.GetIdentity(c)
		tenantID := identity.TenantID()
		if tenantID == nil {
			// Auth runs before this middleware; a missing tenant means the
			// route is wired wrong, not that the client erred.
			httpkit.Error(c, http.StatusUnauthorized, "unauthorized", nil)
			c.Abort()
			return
		}

		compositeKey := CompositeKey(*tenantID, key)

		if stored, ok, err := cache.Get(c.Request.Context(), compositeKey); err != nil {
			log.Warn("idempotency cache read failed, executing request", "error", err)
		} else if ok {
			c.Header(ReplayedHeader, "true")
			c.Data(stored.StatusCode, "application/json", stored.Body)
			c.Abort()
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		stored := StoredResponse{
			StatusCode: status,
			Body:       append([]byte(nil), recorder.buf.Bytes()...),
			StoredAt:   time.Now().UTC(),
		}
		if err := cache.Set(c.Request.Context(), compositeKey, stored); err != nil {
			log.Warn("idempotency cache write failed", "error", err)
		}
	}
}
