package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// TaskCounter reports how many tasks are in each status.
type TaskCounter interface {
	CountByStatus() map[string]int
}

// Represents the health check response
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version"`
	Uptime    string         `json:"uptime"`
	Tasks     map[string]int `json:"tasks,omitempty"`
}

// HandleHealth returns the health status of the API server along with task
// counts by status. A nil counter omits the counts.
func HandleHealth(version string, startTime time.Time, counter TaskCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now(),
			Version:   version,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
		}
		if counter != nil {
			response.Tasks = counter.CountByStatus()
		}

		c.JSON(http.StatusOK, response)
	}
}
