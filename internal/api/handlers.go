package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/resistanceisuseless/subrecon/internal/enumeration"
)

type enumerateRequest struct {
	Domain     string   `json:"domain"`
	Subdomains []string `json:"subdomains"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": s.version,
	})
}

func (s *Server) enumerate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var req enumerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	// Query parameters win over the body
	for name, target := range map[string]*int{"page": &req.Page, "page_size": &req.PageSize} {
		raw, ok := c.GetQuery(name)
		if !ok {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
			return
		}
		*target = value
	}

	result, err := s.enumerator.Enumerate(c.Request.Context(), enumeration.Request{
		Domain:     req.Domain,
		Candidates: req.Subdomains,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result.Response())
}

func (s *Server) writeError(c *gin.Context, err error) {
	if errors.Is(err, enumeration.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.logger.Error("enumeration failed",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
