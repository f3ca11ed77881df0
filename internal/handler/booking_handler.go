package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/educonnect-pk/educonnect-api/internal/service"
	appErrors "github.com/educonnect-pk/educonnect-api/pkg/errors"
	"github.com/educonnect-pk/educonnect-api/pkg/response"
)

// BookingHandler serves session booking endpoints.
type BookingHandler struct {
	bookings *service.BookingService
	exports  *service.ExportService
}

// NewBookingHandler creates a new handler. The export service may be
// nil when exports are disabled.
func NewBookingHandler(bookings *service.BookingService, exports *service.ExportService) *BookingHandler {
	return &BookingHandler{bookings: bookings, exports: exports}
}

// List godoc
// @Summary List my bookings
// @Description Students see sessions they booked, tutors see sessions booked with them
// @Tags Bookings
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	views, err := h.bookings.List(c.Request.Context(), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, views, nil)
}

// Create godoc
// @Summary Book a session
// @Description Book a session with a tutor; the booking starts as pending
// @Tags Bookings
// @Accept json
// @Produce json
// @Param tutorId path string true "Tutor id"
// @Param payload body service.CreateBookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bookings/{tutorId} [post]
func (h *BookingHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}

	booking, err := h.bookings.Create(c.Request.Context(), claims.UserID, c.Param("tutorId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, booking)
}

// UpdateStatus godoc
// @Summary Update booking status
// @Description Transition a booking between lifecycle states
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking id"
// @Param payload body service.UpdateBookingStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id} [put]
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	booking, err := h.bookings.UpdateStatus(c.Request.Context(), claims.UserID, claims.Role, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, booking, nil)
}

// Export godoc
// @Summary Export my bookings
// @Description Download the caller's bookings as CSV or PDF
// @Tags Bookings
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /bookings/export [get]
func (h *BookingHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.exports.Generate(c.Request.Context(), claims.UserID, claims.Role, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
