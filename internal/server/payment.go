package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/agrimarket/internal/statement"
)

func (s *Server) ListFarmerPayments(c *gin.Context) {
	resp, err := s.paymentSvc.FarmerPayments(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DownloadFarmerStatement(c *gin.Context) {
	doc, err := s.statementSvc.FarmerStatement(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, statement.ContentType, doc.Content)
}

func (s *Server) MarkPaymentPaid(c *gin.Context) {
	resp, err := s.paymentSvc.MarkPaid(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkPaymentFailed(c *gin.Context) {
	resp, err := s.paymentSvc.MarkFailed(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
