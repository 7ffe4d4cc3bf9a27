package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/kbase/internal/db"
	"gorm.io/gorm"
)

var (
	ErrTagNotFound  = errors.New("tag not found")
	ErrDuplicateTag = errors.New("tag with this name already exists")
	ErrTagName      = errors.New("tag name must be between 1 and 50 characters")
	ErrNoSelection  = errors.New("no items selected")
)

const maxTagNameLength = 50

// TagService wraps tag related operations.
type TagService struct {
	db *gorm.DB
}

// TagUsage 描述标签及其关联的文章数量
type TagUsage struct {
	ID           uint
	Name         string
	Slug         string
	ArticleCount int64
}

// NewTagService creates a TagService instance.
func NewTagService(gdb *gorm.DB) *TagService {
	return &TagService{db: gdb}
}

// List returns all tags ordered by name.
func (s *TagService) List() ([]db.Tag, error) {
	var tags []db.Tag
	if err := s.db.Order("name asc").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// ListWithCounts 返回标签及其文章使用数量，用于后台列表。
func (s *TagService) ListWithCounts() ([]TagUsage, error) {
	var usages []TagUsage
	if err := s.db.Table("tags").
		Select("tags.id, tags.name, tags.slug, COUNT(article_tags.article_id) AS article_count").
		Joins("LEFT JOIN article_tags ON article_tags.tag_id = tags.id").
		Where("tags.deleted_at IS NULL").
		Group("tags.id, tags.name, tags.slug").
		Order("tags.name asc").
		Scan(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}

// ForArticle returns the tags attached to an article, ordered by name.
func (s *TagService) ForArticle(articleID uint) ([]db.Tag, error) {
	var tags []db.Tag
	if err := s.db.
		Joins("JOIN article_tags ON article_tags.tag_id = tags.id").
		Where("article_tags.article_id = ?", articleID).
		Order("tags.name asc").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Save 创建或更新标签（id 为 0 表示创建）。
// 与分类一致：名称或 slug 重复时拒绝保存。
func (s *TagService) Save(id uint, name string) (*db.Tag, error) {
	name = strings.TrimSpace(name)
	length := utf8.RuneCountInString(name)
	if length < 1 || length > maxTagNameLength {
		return nil, ErrTagName
	}

	slug := Slugify(name)

	var existing db.Tag
	if err := s.db.Where("(name = ? OR slug = ?) AND id <> ?", name, slug, id).First(&existing).Error; err == nil {
		return nil, ErrDuplicateTag
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if id == 0 {
		tag := db.Tag{Name: name, Slug: slug}
		if err := s.db.Create(&tag).Error; err != nil {
			return nil, err
		}
		return &tag, nil
	}

	var tag db.Tag
	if err := s.db.First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}

	tag.Name = name
	tag.Slug = slug
	if err := s.db.Save(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// Delete removes a tag unconditionally, detaching it from any articles.
func (s *TagService) Delete(id uint) error {
	var tag db.Tag
	if err := s.db.First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTagNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&tag).Association("Articles").Clear(); err != nil {
			return err
		}
		return tx.Unscoped().Delete(&tag).Error
	})
}

// BulkDelete 批量删除标签，空选择集直接拒绝。
func (s *TagService) BulkDelete(ids []uint) error {
	if len(ids) == 0 {
		return ErrNoSelection
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM article_tags WHERE tag_id IN ?", ids).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id IN ?", ids).Delete(&db.Tag{}).Error
	})
}
