package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	panchayatdomain "github.com/smallbiznis/agrimarket/internal/panchayat/domain"
)

type createPanchayatRequest struct {
	Name     string `json:"name"`
	District string `json:"district"`
	State    string `json:"state"`
}

func (s *Server) CreatePanchayat(c *gin.Context) {
	var req createPanchayatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.panchayatSvc.Create(c.Request.Context(), panchayatdomain.CreatePanchayatRequest{
		Name:     strings.TrimSpace(req.Name),
		District: strings.TrimSpace(req.District),
		State:    strings.TrimSpace(req.State),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListPanchayats(c *gin.Context) {
	resp, err := s.panchayatSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPanchayatByID(c *gin.Context) {
	resp, err := s.panchayatSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
