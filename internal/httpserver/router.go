package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/velsland/portfolio-api/internal/middleware"
)

type Deps struct {
	Auth    *AuthHTTP
	Content *ContentHTTP
	AuthMW  *middleware.Auth
	Logger  *slog.Logger
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler
	if d.Logger != nil {
		e.Use(middleware.RequestLogger(d.Logger))
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)

	users := v1.Group("/users")
	users.GET("/checkAuth", d.Auth.CheckAuth, d.AuthMW.RequireAuth)

	v1.GET("/projects", d.Content.ListProjects)
	v1.GET("/projects/search", d.Content.SearchProjects)
	v1.GET("/projects/:id", d.Content.GetProject)
	v1.GET("/categories", d.Content.ListCategories)
	v1.GET("/testimonials", d.Content.ListTestimonials)
	v1.POST("/contact", d.Content.SubmitContact)

	admin := v1.Group("/admin", d.AuthMW.RequireAdmin)

	admin.POST("/projects", d.Content.CreateProject)
	admin.PATCH("/projects/:id", d.Content.UpdateProject)
	admin.DELETE("/projects/:id", d.Content.DeleteProject)

	admin.POST("/categories", d.Content.CreateCategory)
	admin.PATCH("/categories/:id", d.Content.UpdateCategory)
	admin.DELETE("/categories/:id", d.Content.DeleteCategory)

	admin.GET("/testimonials", d.Content.AdminListTestimonials)
	admin.POST("/testimonials", d.Content.CreateTestimonial)
	admin.PATCH("/testimonials/:id", d.Content.UpdateTestimonial)
	admin.DELETE("/testimonials/:id", d.Content.DeleteTestimonial)

	admin.GET("/messages", d.Content.ListMessages)
	admin.PATCH("/messages/:id", d.Content.MarkMessageRead)
	admin.DELETE("/messages/:id", d.Content.DeleteMessage)
}
