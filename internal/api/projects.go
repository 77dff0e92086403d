package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createProjectRequest struct {
	Name     string `json:"name" binding:"required"`
	Language string `json:"language"`
}

func (s *Server) createProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	project, err := s.services.Projects.Create(req.Name, req.Language)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (s *Server) listProjects(c *gin.Context) {
	projects, err := s.services.Projects.List(100, 0)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (s *Server) getProject(c *gin.Context) {
	project, err := s.services.Projects.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}
