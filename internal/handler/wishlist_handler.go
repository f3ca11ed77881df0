package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/educonnect-pk/educonnect-api/internal/service"
	appErrors "github.com/educonnect-pk/educonnect-api/pkg/errors"
	"github.com/educonnect-pk/educonnect-api/pkg/response"
)

// WishlistHandler serves wishlist endpoints for students.
type WishlistHandler struct {
	service *service.WishlistService
}

// NewWishlistHandler creates a new handler.
func NewWishlistHandler(svc *service.WishlistService) *WishlistHandler {
	return &WishlistHandler{service: svc}
}

// List godoc
// @Summary List wishlist
// @Description Saved tutors in the order they were saved
// @Tags Wishlist
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /wishlist [get]
func (h *WishlistHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	tutors, err := h.service.ListTutors(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, tutors, nil)
}

// Toggle godoc
// @Summary Toggle wishlist entry
// @Description Add the tutor to the wishlist, or remove it when already saved
// @Tags Wishlist
// @Produce json
// @Param tutorId path string true "Tutor id"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /wishlist/{tutorId} [post]
func (h *WishlistHandler) Toggle(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.service.Toggle(c.Request.Context(), claims.UserID, c.Param("tutorId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// Merge godoc
// @Summary Merge local wishlist
// @Description Fold locally kept tutor ids into the stored wishlist
// @Tags Wishlist
// @Accept json
// @Produce json
// @Param payload body object true "Tutor ids"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /wishlist/merge [post]
func (h *WishlistHandler) Merge(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		TutorIDs []string `json:"tutorIds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "tutorIds required"))
		return
	}

	ids, err := h.service.Merge(c.Request.Context(), claims.UserID, payload.TutorIDs)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"wishlist": ids}, nil)
}
