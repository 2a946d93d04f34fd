package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	bookingdomain "github.com/smallbiznis/agrimarket/internal/booking/domain"
)

type quoteBookingRequest struct {
	MachineType string `json:"machine_type"`
	PricingMode string `json:"pricing_mode"`
	Duration    int    `json:"duration"`
}

type createBookingRequest struct {
	MachineType string `json:"machine_type"`
	PricingMode string `json:"pricing_mode"`
	Duration    int    `json:"duration"`
	BookingDate string `json:"booking_date"`
	Notes       string `json:"notes"`
}

type updateBookingStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) QuoteBooking(c *gin.Context) {
	var req quoteBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bookingSvc.Quote(c.Request.Context(), bookingdomain.QuoteRequest{
		MachineType: strings.TrimSpace(req.MachineType),
		PricingMode: strings.TrimSpace(req.PricingMode),
		Duration:    req.Duration,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bookingSvc.Create(c.Request.Context(), bookingdomain.CreateBookingRequest{
		MachineType: strings.TrimSpace(req.MachineType),
		PricingMode: strings.TrimSpace(req.PricingMode),
		Duration:    req.Duration,
		BookingDate: strings.TrimSpace(req.BookingDate),
		Notes:       req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListBookings(c *gin.Context) {
	var query struct {
		Status    string `form:"status"`
		PageToken string `form:"page_token"`
		PageSize  string `form:"page_size"`
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

	resp, err := s.bookingSvc.List(c.Request.Context(), bookingdomain.ListBookingRequest{
		Status:    strings.TrimSpace(query.Status),
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateBookingStatus(c *gin.Context) {
	var req updateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bookingSvc.UpdateStatus(c.Request.Context(), bookingdomain.UpdateStatusRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Status: strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
