package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	listingdomain "github.com/smallbiznis/agrimarket/internal/listing/domain"
)

type createListingRequest struct {
	CropType     string         `json:"crop_type"`
	QuantityTons string         `json:"quantity_tons"`
	PricePerTon  string         `json:"price_per_ton"`
	Metadata     map[string]any `json:"metadata"`
}

func (s *Server) CreateListing(c *gin.Context) {
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.listingSvc.Create(c.Request.Context(), listingdomain.CreateListingRequest{
		CropType:     strings.TrimSpace(req.CropType),
		QuantityTons: strings.TrimSpace(req.QuantityTons),
		PricePerTon:  strings.TrimSpace(req.PricePerTon),
		Metadata:     req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListListings(c *gin.Context) {
	var query struct {
		PanchayatID string `form:"panchayat_id"`
		CropType    string `form:"crop_type"`
		Status      string `form:"status"`
		PageToken   string `form:"page_token"`
		PageSize    string `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	pageSize, err := parseOptionalInt(query.PageSize)
	if err != nil {
		AbortWithError(c, newValidationError("page_size", "invalid_page_size", "invalid page size"))
		return
	}

	resp, err := s.listingSvc.List(c.Request.Context(), listingdomain.ListListingRequest{
		PanchayatID: strings.TrimSpace(query.PanchayatID),
		CropType:    strings.TrimSpace(query.CropType),
		Status:      strings.TrimSpace(query.Status),
		PageToken:   strings.TrimSpace(query.PageToken),
		PageSize:    pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetListingByID(c *gin.Context) {
	resp, err := s.listingSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) WithdrawListing(c *gin.Context) {
	resp, err := s.listingSvc.Withdraw(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
