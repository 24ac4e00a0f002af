package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/velsland/portfolio-api/internal/apperr"
	"github.com/velsland/portfolio-api/internal/events"
	"github.com/velsland/portfolio-api/internal/logging"
	"github.com/velsland/portfolio-api/internal/models"
	"github.com/velsland/portfolio-api/internal/repo"
	"github.com/velsland/portfolio-api/internal/search"
	"github.com/velsland/portfolio-api/internal/util"
)

var slugCleanRe = regexp.MustCompile(`[^a-z0-9]+`)

func paginate(page, size int) (offset, limit int) {
	return util.Paginate(page, size)
}

// ContentService manages the portfolio content: projects, categories,
// testimonials and contact messages. All writes are admin-gated at the
// router.
type ContentService struct {
	Repo   *repo.GormRepo
	Search *search.Service
	Events *events.Producer
}

func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugCleanRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

type ProjectInput struct {
	Title       string
	Slug        string
	Description string
	ImageURL    string
	CategoryID  *uint
	Featured    bool
	SortOrder   int
}

func (in *ProjectInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("title: must not be empty: %w", apperr.ErrValidation)
	}
	if in.Slug == "" {
		in.Slug = Slugify(in.Title)
	}
	if in.Slug == "" {
		return fmt.Errorf("slug: must not be empty: %w", apperr.ErrValidation)
	}
	return nil
}

func (s *ContentService) ListProjects(ctx context.Context, page, size int, categoryID *uint) (int64, []models.Project, error) {
	offset, limit := paginate(page, size)
	return s.Repo.ListProjects(ctx, offset, limit, categoryID)
}

func (s *ContentService) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	return s.Repo.GetProject(ctx, id)
}

func (s *ContentService) CreateProject(ctx context.Context, in ProjectInput) (*models.Project, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	p := &models.Project{
		Title:       in.Title,
		Slug:        in.Slug,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		CategoryID:  in.CategoryID,
		Featured:    in.Featured,
		SortOrder:   in.SortOrder,
	}
	if err := s.Repo.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	s.indexProject(ctx, p)
	return p, nil
}

func (s *ContentService) UpdateProject(ctx context.Context, id uint, in ProjectInput) (*models.Project, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	p, err := s.Repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Title = in.Title
	p.Slug = in.Slug
	p.Description = in.Description
	p.ImageURL = in.ImageURL
	p.CategoryID = in.CategoryID
	p.Featured = in.Featured
	p.SortOrder = in.SortOrder

	if err := s.Repo.SaveProject(ctx, p); err != nil {
		return nil, err
	}
	s.indexProject(ctx, p)
	return p, nil
}

func (s *ContentService) DeleteProject(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProject(ctx, id); err != nil {
		return err
	}
	if err := s.Search.DeleteProject(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("search_delete_failed", "project_id", id, "error", err)
	}
	return nil
}

func (s *ContentService) SearchProjects(ctx context.Context, query string, page, size int) (int64, []models.Project, error) {
	if strings.TrimSpace(query) == "" {
		return 0, nil, fmt.Errorf("q: must not be empty: %w", apperr.ErrValidation)
	}
	offset, limit := paginate(page, size)
	return s.Search.Search(ctx, query, offset, limit)
}

func (s *ContentService) checkCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	_, err := s.Repo.GetCategory(ctx, *id)
	return err
}

func (s *ContentService) indexProject(ctx context.Context, p *models.Project) {
	if err := s.Search.IndexProject(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "project_id", p.ID, "error", err)
	}
}

// categories

func (s *ContentService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *ContentService) CreateCategory(ctx context.Context, name, slug string) (*models.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name: must not be empty: %w", apperr.ErrValidation)
	}
	if slug == "" {
		slug = Slugify(name)
	}
	c := &models.Category{Name: name, Slug: slug}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContentService) UpdateCategory(ctx context.Context, id uint, name, slug string) (*models.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name: must not be empty: %w", apperr.ErrValidation)
	}
	c, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = name
	if slug != "" {
		c.Slug = slug
	}
	if err := s.Repo.SaveCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContentService) DeleteCategory(ctx context.Context, id uint) error {
	return s.Repo.DeleteCategory(ctx, id)
}

// testimonials

func (s *ContentService) ListTestimonials(ctx context.Context, publishedOnly bool) ([]models.Testimonial, error) {
	return s.Repo.ListTestimonials(ctx, publishedOnly)
}

type TestimonialInput struct {
	Author    string
	Company   string
	Quote     string
	Published bool
}

func (s *ContentService) CreateTestimonial(ctx context.Context, in TestimonialInput) (*models.Testimonial, error) {
	if strings.TrimSpace(in.Author) == "" || strings.TrimSpace(in.Quote) == "" {
		return nil, fmt.Errorf("author and quote: must not be empty: %w", apperr.ErrValidation)
	}
	t := &models.Testimonial{
		Author:    in.Author,
		Company:   in.Company,
		Quote:     in.Quote,
		Published: in.Published,
	}
	if err := s.Repo.CreateTestimonial(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *ContentService) UpdateTestimonial(ctx context.Context, id uint, in TestimonialInput) (*models.Testimonial, error) {
	t, err := s.Repo.GetTestimonial(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Author = in.Author
	t.Company = in.Company
	t.Quote = in.Quote
	t.Published = in.Published
	if err := s.Repo.SaveTestimonial(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *ContentService) DeleteTestimonial(ctx context.Context, id uint) error {
	return s.Repo.DeleteTestimonial(ctx, id)
}

// contact messages

type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Body    string
}

func (s *ContentService) SubmitContact(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	l := logging.FromContext(ctx).With("svc", "content.contact")

	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Body) == "" {
		return nil, fmt.Errorf("name and body: must not be empty: %w", apperr.ErrValidation)
	}
	email := normalizeEmail(in.Email)
	if !emailRe.MatchString(email) {
		return nil, fmt.Errorf("email: malformed address: %w", apperr.ErrValidation)
	}

	m := &models.ContactMessage{
		Name:    in.Name,
		Email:   email,
		Subject: in.Subject,
		Body:    in.Body,
	}
	if err := s.Repo.CreateMessage(ctx, m); err != nil {
		return nil, err
	}

	if err := s.Events.PublishEvent(ctx, "contact_events", fmt.Sprint(m.ID), map[string]any{
		"type":    "contact_message_received",
		"id":      m.ID,
		"email":   m.Email,
		"subject": m.Subject,
	}); err != nil {
		l.Warn("event_publish_failed", "error", err)
	}
	return m, nil
}

func (s *ContentService) ListMessages(ctx context.Context, page, size int) (int64, []models.ContactMessage, error) {
	offset, limit := paginate(page, size)
	return s.Repo.ListMessages(ctx, offset, limit)
}

func (s *ContentService) MarkMessageRead(ctx context.Context, id uint) (*models.ContactMessage, error) {
	return s.Repo.MarkMessageRead(ctx, id)
}

func (s *ContentService) DeleteMessage(ctx context.Context, id uint) error {
	return s.Repo.DeleteMessage(ctx, id)
}
