package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velsland/portfolio-api/internal/apperr"
	"github.com/velsland/portfolio-api/internal/repo"
)

func newTestContentService(t *testing.T) *ContentService {
	t.Helper()
	return &ContentService{Repo: repo.New(newTestDB(t))}
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "Hello World", want: "hello-world"},
		{in: "  Brand Refresh 2024!  ", want: "brand-refresh-2024"},
		{in: "--already--slugged--", want: "already-slugged"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in))
	}
}

func TestContentService_ProjectCRUD(t *testing.T) {
	t.Parallel()

	svc := newTestContentService(t)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, ProjectInput{
		Title:       "Brand Refresh",
		Description: "Full identity redesign",
		ImageURL:    "/img/brand.webp",
		Featured:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "brand-refresh", p.Slug)
	require.NotZero(t, p.ID)

	got, err := svc.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Brand Refresh", got.Title)

	updated, err := svc.UpdateProject(ctx, p.ID, ProjectInput{
		Title:     "Brand Refresh",
		Slug:      "brand-refresh-v2",
		SortOrder: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "brand-refresh-v2", updated.Slug)
	assert.Equal(t, 3, updated.SortOrder)

	require.NoError(t, svc.DeleteProject(ctx, p.ID))

	_, err = svc.GetProject(ctx, p.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = svc.DeleteProject(ctx, p.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestContentService_CreateProject_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestContentService(t)

	_, err := svc.CreateProject(context.Background(), ProjectInput{Title: "   "})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestContentService_CreateProject_UnknownCategory(t *testing.T) {
	t.Parallel()

	svc := newTestContentService(t)

	missing := uint(42)
	_, err := svc.CreateProject(context.Background(), ProjectInput{Title: "X Y", CategoryID: &missing})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestContentService_ListProjects_Pagination(t *testing.T) {
	t.Parallel()

	svc := newTestContentService(t)
	ctx := context.Background()

	for _, title := range []string{"Alpha Site", "Beta Site", "Gamma Site"} {
		_, err := svc.CreateProject(ctx, ProjectInput{Title: title})
		require.NoError(t, err)
	}

	total, items, err := svc.ListProjects(ctx, 1, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 2)

	total, items, err = svc.ListProjects(ctx, 2, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 1)
}

func TestContentService_CategoryLifecycle(t *testing.T) {
	t.Parallel()

	svc := newTestContentService(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, "Web Design", "")
	require.NoError(t, err)
	assert.Equal(t, "web-design", cat.Slug)

	_, err = svc.CreateCategory(ctx, "Web Design", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	p, err := svc.CreateProject(ctx, ProjectInput{Title: "Shop Front", CategoryID: &cat.ID})
	require.NoError(t, err)

	total, items, err := svc.ListProjects(ctx, 1, 10, &cat.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, p.ID, items[0].ID)

	// Deleting the category detaches its projects instead of removing them.
	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))

	got, err := svc.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
}

func TestContentService_Testimonials_PublishedFilter(t *testing.T) {
	t.Parallel()

	svc := newTestContentService(t)
	ctx := context.Background()

	_, err := svc.CreateTestimonial(ctx, TestimonialInput{Author: "Ada", Quote: "Great work", Published: true})
	require.NoError(t, err)
	hidden, err := svc.CreateTestimonial(ctx, TestimonialInput{Author: "Bob", Quote: "Draft notes"})
	require.NoError(t, err)

	public, err := svc.ListTestimonials(ctx, true)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Ada", public[0].Author)

	all, err := svc.ListTestimonials(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	published, err := svc.UpdateTestimonial(ctx, hidden.ID, TestimonialInput{
		Author: "Bob", Quote: "Polished quote", Published: true,
	})
	require.NoError(t, err)
	assert.True(t, published.Published)

	require.NoError(t, svc.DeleteTestimonial(ctx, hidden.ID))
}

func TestContentService_ContactFlow(t *testing.T) {
	t.Parallel()

	svc := newTestContentService(t)
	ctx := context.Background()

	_, err := svc.SubmitContact(ctx, ContactInput{Name: "Ada", Email: "bad-email", Body: "Hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	m, err := svc.SubmitContact(ctx, ContactInput{
		Name:    "Ada",
		Email:   "Ada@X.com",
		Subject: "Quote request",
		Body:    "I need a website.",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@x.com", m.Email)
	assert.False(t, m.Read)

	total, items, err := svc.ListMessages(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)

	read, err := svc.MarkMessageRead(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, read.Read)

	require.NoError(t, svc.DeleteMessage(ctx, m.ID))

	_, err = svc.MarkMessageRead(ctx, m.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
