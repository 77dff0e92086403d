package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) getDiff(c *gin.Context) {
	diff, err := s.services.Diffs.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, diff)
}

type reviewDiffRequest struct {
	Decision string `json:"decision" binding:"required"`
	Feedback string `json:"feedback"`
}

func (s *Server) reviewDiff(c *gin.Context) {
	var req reviewDiffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	diff, result, err := s.services.Diffs.ReviewHuman(c.Request.Context(), c.Param("id"), req.Decision, req.Feedback)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"diff": diff, "pipeline_result": result})
}

type commitDiffRequest struct {
	CommitMessage string `json:"commit_message"`
}

func (s *Server) commitDiff(c *gin.Context) {
	var req commitDiffRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	diff, err := s.services.Diffs.Commit(c.Request.Context(), c.Param("id"), req.CommitMessage)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, diff)
}

func (s *Server) refineDiffMessage(c *gin.Context) {
	diff, err := s.services.Diffs.RefineCommitMessage(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, diff)
}

func (s *Server) runDiffTests(c *gin.Context) {
	diff, err := s.services.Diffs.RunTests(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, diff)
}
