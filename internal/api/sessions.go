package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createSessionRequest struct {
	NodeID string `json:"node_id"`
}

func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := s.services.Sessions.CreateOrGet(c.Param("id"), req.NodeID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (s *Server) getSession(c *gin.Context) {
	session, err := s.services.Sessions.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) clearSession(c *gin.Context) {
	if err := s.services.Sessions.Clear(c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

type postMessageRequest struct {
	Content   string `json:"content" binding:"required"`
	MessageID string `json:"message_id"`
}

func (s *Server) postMessage(c *gin.Context) {
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := s.services.Pipeline.HandleMessage(c.Request.Context(), c.Param("id"), req.Content, req.MessageID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) getMessages(c *gin.Context) {
	messages, err := s.services.Sessions.Transcript(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (s *Server) getPendingDiffs(c *gin.Context) {
	diffs, err := s.services.Diffs.ListPending(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, diffs)
}
