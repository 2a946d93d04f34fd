package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	farmerdomain "github.com/smallbiznis/agrimarket/internal/farmer/domain"
)

type registerFarmerRequest struct {
	PanchayatID   string `json:"panchayat_id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	PayoutAccount string `json:"payout_account"`
}

func (s *Server) RegisterFarmer(c *gin.Context) {
	var req registerFarmerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.farmerSvc.Register(c.Request.Context(), farmerdomain.RegisterFarmerRequest{
		PanchayatID:   strings.TrimSpace(req.PanchayatID),
		Name:          strings.TrimSpace(req.Name),
		Phone:         strings.TrimSpace(req.Phone),
		PayoutAccount: strings.TrimSpace(req.PayoutAccount),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetFarmerProfile(c *gin.Context) {
	resp, err := s.farmerSvc.Me(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
