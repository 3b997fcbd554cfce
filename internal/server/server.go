package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/albertus-andito/fake-news-detection/internal/core"
	"github.com/albertus-andito/fake-news-detection/internal/core/model"
)

// Server exposes the verifier's session and actions over HTTP.
type Server struct {
	Verifier *core.Verifier
	Logger   *log.Logger
}

func NewServer(v *core.Verifier, logger *log.Logger) *Server {
	return &Server{Verifier: v, Logger: logger}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/session", s.GetSession)

	check := r.Group("/check")
	check.POST("/triples", s.CheckTriples)
	check.POST("/text", s.CheckText)
	check.POST("/url", s.CheckURL)

	r.GET("/articles", s.ListArticles)
	r.POST("/articles", s.SubmitArticle)
	r.POST("/articles/select", s.SelectArticle)

	rows := r.Group("/rows/:key")
	rows.POST("/add", s.Add)
	rows.POST("/add-forced", s.AddForced)
	rows.POST("/remove", s.Remove)
	rows.POST("/discard", s.Discard)
	rows.GET("/presence", s.Presence)
	rows.GET("/evidence/:evidence/presence", s.EvidencePresence)
	rows.POST("/evidence/:evidence/remove", s.RemoveEvidence)

	r.POST("/triples", s.AddTriples)
	r.DELETE("/triples", s.RemoveTriple)

	r.GET("/entities", s.Entity)
	r.POST("/entities/equate", s.Equate)

	r.POST("/updates", s.StartUpdate)
	r.GET("/updates", s.UpdateStatus)

	return r
}

func (s *Server) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.Verifier.Snapshot())
}

type checkTriplesRequest struct {
	Triples []model.Triple `json:"triples" binding:"required"`
}

func (s *Server) CheckTriples(c *gin.Context) {
	var req checkTriplesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	view, err := s.Verifier.CheckTriples(c.Request.Context(), req.Triples)
	if err != nil {
		s.writeError(c, "check triples", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type checkTextRequest struct {
	Text            string `json:"text" binding:"required"`
	ExtractionScope string `json:"extraction_scope"`
}

func (s *Server) CheckText(c *gin.Context) {
	var req checkTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	scope, err := model.ParseExtractionScope(req.ExtractionScope)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := s.Verifier.CheckText(c.Request.Context(), req.Text, scope)
	if err != nil {
		s.writeError(c, "check text", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type checkURLRequest struct {
	URL             string `json:"url" binding:"required"`
	ExtractionScope string `json:"extraction_scope"`
}

func (s *Server) CheckURL(c *gin.Context) {
	var req checkURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	scope, err := model.ParseExtractionScope(req.ExtractionScope)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := s.Verifier.CheckURL(c.Request.Context(), req.URL, scope)
	if err != nil {
		s.writeError(c, "check url", err)
		return
	}
	c.JSON(http.StatusOK, view)
}
