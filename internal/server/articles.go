package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
)

func (s *Server) ListArticles(c *gin.Context) {
	articles, err := s.Verifier.ListArticles(c.Request.Context())
	if err != nil {
		s.writeError(c, "list articles", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles, "selected": s.Verifier.SelectedArticle()})
}

type selectArticleRequest struct {
	Source string `json:"source" binding:"required"`
}

func (s *Server) SelectArticle(c *gin.Context) {
	var req selectArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	view, err := s.Verifier.SelectArticle(c.Request.Context(), req.Source)
	if err != nil {
		s.writeError(c, "select article", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type submitArticleRequest struct {
	URL             string `json:"url" binding:"required"`
	ExtractionScope string `json:"extraction_scope"`
	AutoAdd         bool   `json:"auto_add"`
}

func (s *Server) SubmitArticle(c *gin.Context) {
	var req submitArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	scope, err := model.ParseExtractionScope(req.ExtractionScope)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := s.Verifier.SubmitArticle(c.Request.Context(), req.URL, scope, req.AutoAdd)
	if err != nil {
		s.writeError(c, "submit article", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type updateRequest struct {
	ExtractionScope string `json:"extraction_scope"`
	AutoAdd         bool   `json:"auto_add"`
}

func (s *Server) StartUpdate(c *gin.Context) {
	var req updateRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	scope, err := model.ParseExtractionScope(req.ExtractionScope)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := s.Verifier.StartUpdate(c.Request.Context(), scope, req.AutoAdd)
	if err != nil {
		s.writeError(c, "start update", err)
		return
	}
	c.JSON(http.StatusAccepted, job)
}

func (s *Server) UpdateStatus(c *gin.Context) {
	job, ok := s.Verifier.UpdateStatus()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no update job has been started"})
		return
	}
	status := http.StatusOK
	if job.Status == model.JobRunning {
		status = http.StatusAccepted
	}
	c.JSON(status, job)
}
