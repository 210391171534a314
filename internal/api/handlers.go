// Package api exposes the AndCook services over HTTP.
package api

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andcook/andcook/backend/internal/apperror"
	"github.com/andcook/andcook/backend/internal/middleware"
	"github.com/andcook/andcook/backend/internal/service"
)

// Services are the dependencies of the API handlers.
type Services struct {
	Auth       service.IAuthService
	Recipes    service.IRecipeService
	Ratings    service.IRatingService
	Favorites  service.IFavoriteService
	Categories service.ICategoryService
	Profiles   service.IProfileService
	Admin      service.IAdminService
	Images     service.IImageService

	// MaxUploadBytes bounds the multipart body accepted by POST /upload.
	MaxUploadBytes int64
}

// Limiters hold the per-user rate limiters. A nil limiter disables limiting
// for that route.
type Limiters struct {
	RecipeCreate middleware.Limiter
	Rating       middleware.Limiter
	Upload       middleware.Limiter
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, svc Services, limits Limiters, health *HealthHandler) {
	router.GET("/health", health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.AuthMiddleware(svc.Auth)
	v1 := router.Group("/api/v1")

	NewRecipeHandler(svc.Recipes, svc.Ratings).RegisterRoutes(v1, auth, limits)
	NewFavoriteHandler(svc.Favorites).RegisterRoutes(v1, auth)
	NewCategoryHandler(svc.Categories).RegisterRoutes(v1, auth)
	NewProfileHandler(svc.Profiles).RegisterRoutes(v1, auth)
	NewImageHandler(svc.Images, svc.MaxUploadBytes).RegisterRoutes(v1, auth, limits)
	NewAdminHandler(svc.Admin).RegisterRoutes(v1, auth)
}

func limit(l middleware.Limiter, scope string) gin.HandlerFunc {
	if l == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(l, scope)
}

// respondError hands err to middleware.ErrorHandler.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// bindJSON decodes the body into obj and runs its binding rules. An empty body
// is allowed when allowEmpty is set; the zero value is then validated.
func bindJSON(c *gin.Context, obj any, allowEmpty bool) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	respondError(c, bindingError(err))
	return false
}

// bindingError turns a gin binding failure into a validation error with a
// readable message for the first offending field.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.New(apperror.ErrValidation, "Invalid request body")
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return apperror.Newf(apperror.ErrValidation, "%s is required", field)
	case "gt", "min":
		return apperror.Newf(apperror.ErrValidation, "%s must be greater than %s", field, fe.Param())
	case "max":
		return apperror.Newf(apperror.ErrValidation, "%s must be at most %s", field, fe.Param())
	case "oneof":
		return apperror.Newf(apperror.ErrValidation, "%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return apperror.Newf(apperror.ErrValidation, "%s is invalid", field)
	}
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}
