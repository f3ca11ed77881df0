package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/educonnect-pk/educonnect-api/internal/models"
	"github.com/educonnect-pk/educonnect-api/internal/service"
	appErrors "github.com/educonnect-pk/educonnect-api/pkg/errors"
	"github.com/educonnect-pk/educonnect-api/pkg/response"
)

// TutorHandler serves the public tutor directory and review submission.
type TutorHandler struct {
	directory *service.DirectoryService
	reviews   *service.ReviewService
}

// NewTutorHandler creates a new handler.
func NewTutorHandler(directory *service.DirectoryService, reviews *service.ReviewService) *TutorHandler {
	return &TutorHandler{directory: directory, reviews: reviews}
}

// List godoc
// @Summary Browse tutors
// @Description List tutors with optional filter and search criteria
// @Tags Tutors
// @Produce json
// @Param subject query string false "Exact subject"
// @Param location query string false "Exact location"
// @Param minPrice query int false "Minimum hourly rate (PKR)"
// @Param maxPrice query int false "Maximum hourly rate (PKR)"
// @Param minRating query number false "Minimum rating"
// @Param search query string false "Name or subject substring"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /tutors [get]
func (h *TutorHandler) List(c *gin.Context) {
	filter, err := parseTutorFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	tutors, pagination, err := h.directory.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, tutors, pagination)
}

// Get godoc
// @Summary Tutor profile
// @Description Fetch a tutor's full profile with reviews
// @Tags Tutors
// @Produce json
// @Param id path string true "Tutor id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tutors/{id} [get]
func (h *TutorHandler) Get(c *gin.Context) {
	detail, err := h.directory.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// CreateReview godoc
// @Summary Review a tutor
// @Description Submit a rating and comment for a tutor
// @Tags Tutors
// @Accept json
// @Produce json
// @Param id path string true "Tutor id"
// @Param payload body service.CreateReviewRequest true "Review payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /tutors/review/{id} [post]
func (h *TutorHandler) CreateReview(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, review)
}

func parseTutorFilter(c *gin.Context) (models.TutorFilter, error) {
	filter := models.TutorFilter{
		FilterOptions: models.DefaultFilterOptions(),
		Search:        c.Query("search"),
		Page:          1,
		PageSize:      20,
	}
	filter.Subject = c.Query("subject")
	filter.Location = c.Query("location")

	if raw := c.Query("minPrice"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "minPrice must be an integer")
		}
		filter.MinPrice = &v
	}
	if raw := c.Query("maxPrice"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "maxPrice must be an integer")
		}
		filter.MaxPrice = &v
	}
	if raw := c.Query("minRating"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "minRating must be a number")
		}
		filter.MinRating = &v
	}
	if raw := c.Query("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			filter.Page = v
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
			filter.PageSize = v
		}
	}
	return filter, nil
}
