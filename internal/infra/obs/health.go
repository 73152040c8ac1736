package obs

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const defaultReadyTimeout = 2 * time.Second

// ReadyCheck pings one backing service. A nil Ping is skipped.
type ReadyCheck struct {
	Name string
	Ping func(context.Context) error
}

// HealthHandlers serves /livez and /readyz. Readiness fails while any
// check fails; every check runs so the response names all failing ones.
type HealthHandlers struct {
	Checks  []ReadyCheck
	Timeout time.Duration
}

func (h HealthHandlers) Livez(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = defaultReadyTimeout
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	failed := map[string]string{}
	for _, check := range h.Checks {
		if check.Ping == nil {
			continue
		}
		if err := check.Ping(ctx); err != nil {
			failed[check.Name] = err.Error()
		}
	}
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "failed": failed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
