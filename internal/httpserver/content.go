package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/velsland/portfolio-api/internal/apperr"
	"github.com/velsland/portfolio-api/internal/service"
)

type ContentHTTP struct {
	Svc *service.ContentService
}

func idParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("id: must be a positive integer: %w", apperr.ErrValidation)
	}
	return uint(id), nil
}

func intQuery(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

// public endpoints

func (h *ContentHTTP) ListProjects(c echo.Context) error {
	page := intQuery(c, "page", 1)
	size := intQuery(c, "size", 0)

	var categoryID *uint
	if v := c.QueryParam("category"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("category: must be a positive integer: %w", apperr.ErrValidation)
		}
		id := uint(n)
		categoryID = &id
	}

	total, items, err := h.Svc.ListProjects(c.Request().Context(), page, size, categoryID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": newPageMeta(page, len(items), total),
	})
}

func (h *ContentHTTP) SearchProjects(c echo.Context) error {
	page := intQuery(c, "page", 1)
	size := intQuery(c, "size", 0)

	total, items, err := h.Svc.SearchProjects(c.Request().Context(), c.QueryParam("q"), page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": newPageMeta(page, len(items), total),
	})
}

func (h *ContentHTTP) GetProject(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	p, err := h.Svc.GetProject(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ContentHTTP) ListCategories(c echo.Context) error {
	items, err := h.Svc.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ContentHTTP) ListTestimonials(c echo.Context) error {
	items, err := h.Svc.ListTestimonials(c.Request().Context(), true)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ContentHTTP) SubmitContact(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("invalid body: %w", apperr.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	m, err := h.Svc.SubmitContact(c.Request().Context(), service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

// admin endpoints

func (h *ContentHTTP) projectInput(c echo.Context) (service.ProjectInput, error) {
	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return service.ProjectInput{}, fmt.Errorf("invalid body: %w", apperr.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return service.ProjectInput{}, err
	}
	return service.ProjectInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
		Featured:    req.Featured,
		SortOrder:   req.SortOrder,
	}, nil
}

func (h *ContentHTTP) CreateProject(c echo.Context) error {
	in, err := h.projectInput(c)
	if err != nil {
		return err
	}
	p, err := h.Svc.CreateProject(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ContentHTTP) UpdateProject(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	in, err := h.projectInput(c)
	if err != nil {
		return err
	}
	p, err := h.Svc.UpdateProject(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ContentHTTP) DeleteProject(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteProject(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ContentHTTP) CreateCategory(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("invalid body: %w", apperr.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	cat, err := h.Svc.CreateCategory(c.Request().Context(), req.Name, req.Slug)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *ContentHTTP) UpdateCategory(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("invalid body: %w", apperr.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	cat, err := h.Svc.UpdateCategory(c.Request().Context(), id, req.Name, req.Slug)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *ContentHTTP) DeleteCategory(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteCategory(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ContentHTTP) AdminListTestimonials(c echo.Context) error {
	items, err := h.Svc.ListTestimonials(c.Request().Context(), false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ContentHTTP) testimonialInput(c echo.Context) (service.TestimonialInput, error) {
	var req testimonialRequest
	if err := c.Bind(&req); err != nil {
		return service.TestimonialInput{}, fmt.Errorf("invalid body: %w", apperr.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return service.TestimonialInput{}, err
	}
	return service.TestimonialInput{
		Author:    req.Author,
		Company:   req.Company,
		Quote:     req.Quote,
		Published: req.Published,
	}, nil
}

func (h *ContentHTTP) CreateTestimonial(c echo.Context) error {
	in, err := h.testimonialInput(c)
	if err != nil {
		return err
	}
	t, err := h.Svc.CreateTestimonial(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *ContentHTTP) UpdateTestimonial(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	in, err := h.testimonialInput(c)
	if err != nil {
		return err
	}
	t, err := h.Svc.UpdateTestimonial(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (h *ContentHTTP) DeleteTestimonial(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteTestimonial(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ContentHTTP) ListMessages(c echo.Context) error {
	page := intQuery(c, "page", 1)
	size := intQuery(c, "size", 0)

	total, items, err := h.Svc.ListMessages(c.Request().Context(), page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": newPageMeta(page, len(items), total),
	})
}

func (h *ContentHTTP) MarkMessageRead(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	m, err := h.Svc.MarkMessageRead(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *ContentHTTP) DeleteMessage(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteMessage(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
