package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/erkkar/tms4-data-reader/services/api/db"
)

func (s *Server) handleListLoggers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	loggers, err := s.store.ListLoggers(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"loggers": loggers, "count": len(loggers)})
}

func (s *Server) handleGetLogger(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("logger_id"), 10, 64)
	if err != nil || id < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid logger_id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	logger, err := s.store.GetLogger(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if logger == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "logger not found"})
		return
	}

	c.JSON(http.StatusOK, logger)
}

func (s *Server) handleMeasurements(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("logger_id"), 10, 64)
	if err != nil || id < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid logger_id"})
		return
	}

	limit := s.cfg.DefaultLimit
	if limitStr := c.Query("last_n"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid last_n"})
			return
		}
		limit = parsed
	}

	var since *time.Time
	var until *time.Time

	if startStr := c.Query("start"); startStr != "" {
		t, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start timestamp"})
			return
		}
		tt := t.UTC()
		since = &tt
	}

	if endStr := c.Query("end"); endStr != "" {
		t, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end timestamp"})
			return
		}
		tt := t.UTC()
		until = &tt
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	measurements, err := s.store.FetchMeasurements(ctx, db.MeasurementQuery{
		LoggerID: id,
		Limit:    limit,
		Since:    since,
		Until:    until,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logger_id":    id,
		"count":        len(measurements),
		"measurements": measurements,
	})
}

// handleCoverage splits an expected logger list into present and missing
// against the ingested data: the stored analogue of the reader's
// CheckMissing.
func (s *Server) handleCoverage(c *gin.Context) {
	expectedStr := c.Query("expected")
	if expectedStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected is required (comma-separated logger ids)"})
		return
	}

	expected := make([]int64, 0)
	for _, part := range strings.Split(expectedStr, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expected entry: " + part})
			return
		}
		expected = append(expected, id)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	presentIDs, err := s.store.PresentLoggerIDs(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	presentSet := make(map[int64]struct{}, len(presentIDs))
	for _, id := range presentIDs {
		presentSet[id] = struct{}{}
	}

	present := make([]int64, 0, len(expected))
	missing := make([]int64, 0)
	for _, id := range expected {
		if _, ok := presentSet[id]; ok {
			present = append(present, id)
		} else {
			missing = append(missing, id)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"present": present,
		"missing": missing,
	})
}

func (s *Server) handleListRuns(c *gin.Context) {
	limit := 20
	if limitStr := c.Query("last_n"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid last_n"})
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}
