package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/document"
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/similarity"
)

type matchResponse struct {
	Message string `json:"message"`
	*matching.Report
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) match(c *gin.Context) {
	maxBytes := s.config.MaxUploadMB << 20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	if err := c.Request.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || c.Request.ContentLength > maxBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("upload exceeds %d MB", s.config.MaxUploadMB)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form: " + err.Error()})
		return
	}

	role := strings.TrimSpace(c.PostForm("job_role"))
	if role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_role is required"})
		return
	}

	fh, err := c.FormFile("resume")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resume file is required"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !slices.Contains(s.config.AllowedExtensions, ext) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("only %s files are allowed", strings.Join(s.config.AllowedExtensions, ", ")),
		})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read resume upload"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read resume upload"})
		return
	}

	text, err := document.Extract(fh.Filename, data)
	if err != nil {
		s.logger.Warn("resume extraction failed", zap.String("file", fh.Filename), zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": document.ErrExtraction.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.MatchTimeout)
	defer cancel()

	listings := s.source.Fetch(ctx, role)

	report, err := s.matcher.Match(ctx, text, role, listings)
	if err != nil {
		s.logger.Error("matching failed", zap.String("role", role), zap.Error(err))
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "matching timed out"})
		case errors.Is(err, similarity.ErrScoring):
			c.JSON(http.StatusBadGateway, gin.H{"error": "similarity provider is unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "matching failed"})
		}
		return
	}

	c.JSON(http.StatusOK, matchResponse{Message: report.Message(), Report: report})
}
