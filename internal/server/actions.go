package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
)

type confirmRequest struct {
	Confirmed bool `json:"confirmed"`
}

// bindOptionalJSON binds the body when there is one.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) confirmed(c *gin.Context) (bool, bool) {
	var req confirmRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return false, false
	}
	return req.Confirmed || c.Query("confirm") == "true", true
}

// respondRow answers a row action with the resolution and the session after it.
func (s *Server) respondRow(c *gin.Context, key string) {
	body := gin.H{"session": s.Verifier.Snapshot()}
	if res, ok := s.Verifier.Session.Resolution(key); ok {
		body["resolution"] = res
		body["message"] = res.Message()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) Add(c *gin.Context) {
	key := c.Param("key")
	if err := s.Verifier.Resolver.Add(c.Request.Context(), key); err != nil {
		s.writeError(c, "add", err)
		return
	}
	s.respondRow(c, key)
}

func (s *Server) AddForced(c *gin.Context) {
	key := c.Param("key")
	ok, valid := s.confirmed(c)
	if !valid {
		return
	}
	if err := s.Verifier.Resolver.AddForced(c.Request.Context(), key, ok); err != nil {
		s.writeError(c, "add forced", err)
		return
	}
	s.respondRow(c, key)
}

func (s *Server) Remove(c *gin.Context) {
	key := c.Param("key")
	ok, valid := s.confirmed(c)
	if !valid {
		return
	}
	if err := s.Verifier.Resolver.Remove(c.Request.Context(), key, ok); err != nil {
		s.writeError(c, "remove", err)
		return
	}
	s.respondRow(c, key)
}

func (s *Server) Discard(c *gin.Context) {
	key := c.Param("key")
	ok, valid := s.confirmed(c)
	if !valid {
		return
	}
	if err := s.Verifier.Resolver.Discard(c.Request.Context(), key, ok); err != nil {
		s.writeError(c, "discard", err)
		return
	}
	s.respondRow(c, key)
}

func (s *Server) Presence(c *gin.Context) {
	p, err := s.Verifier.Resolver.VerifyPresence(c.Request.Context(), c.Param("key"))
	if err != nil {
		s.writeError(c, "verify presence", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"presence": p})
}

func (s *Server) EvidencePresence(c *gin.Context) {
	p, err := s.Verifier.Resolver.VerifyEvidence(c.Request.Context(), c.Param("key"), c.Param("evidence"))
	if err != nil {
		s.writeError(c, "verify evidence", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"presence": p})
}

func (s *Server) RemoveEvidence(c *gin.Context) {
	key := c.Param("key")
	ok, valid := s.confirmed(c)
	if !valid {
		return
	}
	if err := s.Verifier.Resolver.RemoveEvidence(c.Request.Context(), key, c.Param("evidence"), ok); err != nil {
		s.writeError(c, "remove evidence", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from Knowledge Graph", "session": s.Verifier.Snapshot()})
}

type addTriplesRequest struct {
	Triples []model.Triple `json:"triples" binding:"required"`
	Force   bool           `json:"force"`
}

// AddTriples inserts verifier-entered knowledge outside the session.
func (s *Server) AddTriples(c *gin.Context) {
	var req addTriplesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := s.Verifier.Resolver.AddTriples(c.Request.Context(), req.Triples, req.Force); err != nil {
		s.writeError(c, "add triples", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All triples inserted."})
}

type removeTripleRequest struct {
	Triple    model.Triple `json:"triple"`
	Confirmed bool         `json:"confirmed"`
}

func (s *Server) RemoveTriple(c *gin.Context) {
	var req removeTripleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := s.Verifier.Resolver.RemoveTriple(c.Request.Context(), req.Triple, req.Confirmed); err != nil {
		s.writeError(c, "remove triple", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from Knowledge Graph"})
}

func (s *Server) Entity(c *gin.Context) {
	subject := c.Query("subject")
	triples, err := s.Verifier.Entity(c.Request.Context(), subject)
	if err != nil {
		s.writeError(c, "entity", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subject": subject, "triples": triples})
}

type equateRequest struct {
	EntityA string `json:"entity_a" binding:"required"`
	EntityB string `json:"entity_b" binding:"required"`
}

func (s *Server) Equate(c *gin.Context) {
	var req equateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := s.Verifier.Resolver.Equate(c.Request.Context(), req.EntityA, req.EntityB); err != nil {
		s.writeError(c, "equate", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Entities are now equal."})
}
