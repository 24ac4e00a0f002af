package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/velsland/portfolio-api/internal/apperr"
	"github.com/velsland/portfolio-api/internal/models"
)

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, apperr.ErrNotFound)
	}
	return err
}

func duplicateOr(err error, what string) error {
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "unique") {
		return fmt.Errorf("%s: %w", what, apperr.ErrConflict)
	}
	return err
}

// projects

func (r *GormRepo) ListProjects(ctx context.Context, offset, limit int, categoryID *uint) (int64, []models.Project, error) {
	q := r.DB.WithContext(ctx).Model(&models.Project{})
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Project
	if err := q.Preload("Category").
		Order("sort_order ASC, id ASC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	if err := r.DB.WithContext(ctx).Preload("Category").First(&p, id).Error; err != nil {
		return nil, notFoundOr(err, "project")
	}
	return &p, nil
}

func (r *GormRepo) CreateProject(ctx context.Context, p *models.Project) error {
	return duplicateOr(r.DB.WithContext(ctx).Create(p).Error, "project slug")
}

func (r *GormRepo) SaveProject(ctx context.Context, p *models.Project) error {
	return duplicateOr(r.DB.WithContext(ctx).Save(p).Error, "project slug")
}

func (r *GormRepo) DeleteProject(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Project{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("project: %w", apperr.ErrNotFound)
	}
	return nil
}

// categories

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var items []models.Category
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	tx := r.DB.WithContext(ctx).Where("name = ?", c.Name).FirstOrCreate(c)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("category name taken: %w", apperr.ErrConflict)
	}
	return nil
}

func (r *GormRepo) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFoundOr(err, "category")
	}
	return &c, nil
}

func (r *GormRepo) SaveCategory(ctx context.Context, c *models.Category) error {
	return duplicateOr(r.DB.WithContext(ctx).Save(c).Error, "category name")
}

// DeleteCategory detaches the category from its projects before removing
// it, so gallery entries survive taxonomy changes.
func (r *GormRepo) DeleteCategory(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Project{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("category: %w", apperr.ErrNotFound)
		}
		return nil
	})
}

// testimonials

func (r *GormRepo) ListTestimonials(ctx context.Context, publishedOnly bool) ([]models.Testimonial, error) {
	q := r.DB.WithContext(ctx).Model(&models.Testimonial{})
	if publishedOnly {
		q = q.Where("published = ?", true)
	}
	var items []models.Testimonial
	if err := q.Order("id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetTestimonial(ctx context.Context, id uint) (*models.Testimonial, error) {
	var t models.Testimonial
	if err := r.DB.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, notFoundOr(err, "testimonial")
	}
	return &t, nil
}

func (r *GormRepo) CreateTestimonial(ctx context.Context, t *models.Testimonial) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *GormRepo) SaveTestimonial(ctx context.Context, t *models.Testimonial) error {
	return r.DB.WithContext(ctx).Save(t).Error
}

func (r *GormRepo) DeleteTestimonial(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Testimonial{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("testimonial: %w", apperr.ErrNotFound)
	}
	return nil
}

// contact messages

func (r *GormRepo) CreateMessage(ctx context.Context, m *models.ContactMessage) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *GormRepo) ListMessages(ctx context.Context, offset, limit int) (int64, []models.ContactMessage, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.ContactMessage{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var items []models.ContactMessage
	if err := r.DB.WithContext(ctx).Order("id DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) MarkMessageRead(ctx context.Context, id uint) (*models.ContactMessage, error) {
	var m models.ContactMessage
	if err := r.DB.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFoundOr(err, "message")
	}
	m.Read = true
	if err := r.DB.WithContext(ctx).Save(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GormRepo) DeleteMessage(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.ContactMessage{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("message: %w", apperr.ErrNotFound)
	}
	return nil
}
