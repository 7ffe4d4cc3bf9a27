package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kbase/internal/db"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateCategory = errors.New("category with this name already exists")
	ErrCategoryNotEmpty  = errors.New("category still has articles attached")
	ErrCategoryName      = errors.New("category name must be between 1 and 100 characters")
)

const maxCategoryNameLength = 100

// CategoryService wraps category related operations.
type CategoryService struct {
	db *gorm.DB
}

// CategoryUsage 描述分类及其下的文章数量
type CategoryUsage struct {
	ID           uint
	Name         string
	Slug         string
	Description  string
	ArticleCount int64
}

// NewCategoryService creates a CategoryService instance.
func NewCategoryService(gdb *gorm.DB) *CategoryService {
	return &CategoryService{db: gdb}
}

// List returns all categories ordered by name.
func (s *CategoryService) List() ([]db.Category, error) {
	var categories []db.Category
	if err := s.db.Order("name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ListWithCounts returns every category with its total article count,
// for the admin overview.
func (s *CategoryService) ListWithCounts() ([]CategoryUsage, error) {
	return s.listUsage(false)
}

// ListPublished 返回含有已发布文章的分类及数量，用于前台筛选。
func (s *CategoryService) ListPublished() ([]CategoryUsage, error) {
	return s.listUsage(true)
}

func (s *CategoryService) listUsage(publishedOnly bool) ([]CategoryUsage, error) {
	query := s.db.Table("categories").
		Select("categories.id, categories.name, categories.slug, categories.description, COUNT(articles.id) AS article_count").
		Group("categories.id, categories.name, categories.slug, categories.description").
		Order("categories.name asc")

	if publishedOnly {
		query = query.
			Joins("LEFT JOIN articles ON articles.category_id = categories.id AND articles.status = ? AND articles.deleted_at IS NULL", db.StatusPublished).
			Having("COUNT(articles.id) > 0")
	} else {
		query = query.
			Joins("LEFT JOIN articles ON articles.category_id = categories.id AND articles.deleted_at IS NULL")
	}

	var usages []CategoryUsage
	if err := query.Scan(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}

// Get fetches a category by id.
func (s *CategoryService) Get(id uint) (*db.Category, error) {
	var category db.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// GetBySlug fetches a category by its slug.
func (s *CategoryService) GetBySlug(slug string) (*db.Category, error) {
	var category db.Category
	if err := s.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// Save 创建或更新分类（id 为 0 表示创建）。
// 名称或 slug 与其他分类重复时直接拒绝，不做后缀消歧。
func (s *CategoryService) Save(id uint, name, description string) (*db.Category, error) {
	name = strings.TrimSpace(name)
	length := utf8.RuneCountInString(name)
	if length < 1 || length > maxCategoryNameLength {
		return nil, ErrCategoryName
	}

	slug := Slugify(name)

	var existing db.Category
	if err := s.db.Where("(name = ? OR slug = ?) AND id <> ?", name, slug, id).First(&existing).Error; err == nil {
		return nil, ErrDuplicateCategory
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if id == 0 {
		category := db.Category{Name: name, Slug: slug, Description: strings.TrimSpace(description)}
		if err := s.db.Create(&category).Error; err != nil {
			return nil, err
		}
		return &category, nil
	}

	category, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	category.Name = name
	category.Slug = slug
	category.Description = strings.TrimSpace(description)
	if err := s.db.Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category, refusing while any article still references it.
func (s *CategoryService) Delete(id uint) error {
	category, err := s.Get(id)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&db.Article{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d article(s)", ErrCategoryNotEmpty, count)
	}

	return s.db.Unscoped().Delete(category).Error
}
