package router

import (
	"github.com/gin-gonic/gin"

	"github.com/educonnect-pk/educonnect-api/internal/handler"
	"github.com/educonnect-pk/educonnect-api/internal/middleware"
	"github.com/educonnect-pk/educonnect-api/internal/models"
	"github.com/educonnect-pk/educonnect-api/internal/repository"
	"github.com/educonnect-pk/educonnect-api/internal/service"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Tutors   *handler.TutorHandler
	Bookings *handler.BookingHandler
	Wishlist *handler.WishlistHandler
}

// Register mounts the API surface under the given prefix. The tutor
// directory is public, bookings require a signed-in user, and the
// wishlist plus review and booking submission are student actions.
// Review and wishlist writes go through the audit middleware; booking
// and auth mutations write their own audit entries in the services.
func Register(r *gin.Engine, prefix string, h Handlers, authService *service.AuthService, auditRepo *repository.UserRepository) {
	api := r.Group(prefix)

	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)

	api.GET("/tutors", middleware.OptionalJWT(authService), h.Tutors.List)
	api.GET("/tutors/:id", h.Tutors.Get)

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))
	{
		authed.GET("/auth/user", h.Auth.Me)
		authed.POST("/auth/logout", h.Auth.Logout)
		authed.PUT("/auth/password", h.Auth.ChangePassword)

		authed.GET("/bookings", h.Bookings.List)
		authed.GET("/bookings/export", h.Bookings.Export)
		authed.PUT("/bookings/:id", h.Bookings.UpdateStatus)
	}

	students := api.Group("")
	students.Use(middleware.JWT(authService), middleware.RequireRoles(models.RoleStudent))
	{
		students.POST("/tutors/review/:id",
			middleware.Audit(auditRepo, models.AuditActionReviewCreate, "reviews"), h.Tutors.CreateReview)
		students.POST("/bookings/:tutorId", h.Bookings.Create)

		students.GET("/wishlist", h.Wishlist.List)
		students.POST("/wishlist/merge",
			middleware.Audit(auditRepo, models.AuditActionWishlistMerge, "wishlist"), h.Wishlist.Merge)
		students.POST("/wishlist/:tutorId",
			middleware.Audit(auditRepo, models.AuditActionWishlistToggle, "wishlist"), h.Wishlist.Toggle)
	}
}
