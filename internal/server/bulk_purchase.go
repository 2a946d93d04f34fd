package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	bulkdomain "github.com/smallbiznis/agrimarket/internal/bulkpurchase/domain"
)

type createBulkPurchaseRequest struct {
	ListingIDs            []string `json:"listing_ids"`
	NegotiatedPricePerTon string   `json:"negotiated_price_per_ton"`
}

func (s *Server) CreateBulkPurchase(c *gin.Context) {
	var req createBulkPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	listingIDs := make([]string, 0, len(req.ListingIDs))
	for _, id := range req.ListingIDs {
		listingIDs = append(listingIDs, strings.TrimSpace(id))
	}

	resp, err := s.bulkSvc.Create(c.Request.Context(), bulkdomain.CreateBulkPurchaseRequest{
		ListingIDs:            listingIDs,
		NegotiatedPricePerTon: strings.TrimSpace(req.NegotiatedPricePerTon),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetBulkPurchaseByID(c *gin.Context) {
	resp, err := s.bulkSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
