package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kbase/internal/db"
	"gorm.io/gorm"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrTitleRequired   = errors.New("article title must be between 1 and 255 characters")
	ErrContentRequired = errors.New("article content is required")
	ErrInvalidStatus   = errors.New("invalid article status")
)

const maxTitleLength = 255

// ArticleService wraps article related database operations.
type ArticleService struct {
	db *gorm.DB
}

// ArticleInput represents fields accepted when creating or updating an article.
type ArticleInput struct {
	Title      string
	Content    string
	Excerpt    string
	CategoryID *uint
	AuthorID   *uint
	Status     string
	Featured   bool
	TagIDs     []uint
}

// ArticleFilter describes filters for listing articles.
type ArticleFilter struct {
	Search     string
	Status     string
	CategoryID *uint
	Featured   bool
	Sort       string
	Page       int
	PerPage    int
}

// ArticleListResult aggregates paginated list data.
type ArticleListResult struct {
	Articles   []db.Article
	Pagination Pagination
}

// Stats 汇总后台仪表盘需要的站点统计数据
type Stats struct {
	TotalArticles     int64
	PublishedArticles int64
	DraftArticles     int64
	TotalCategories   int64
	TotalTags         int64
	TotalViews        int64
}

// NewArticleService creates an ArticleService instance.
func NewArticleService(gdb *gorm.DB) *ArticleService {
	return &ArticleService{db: gdb}
}

// Get fetches an article by id with its associations preloaded.
func (s *ArticleService) Get(id uint) (*db.Article, error) {
	var article db.Article
	if err := s.db.Preload("Tags").Preload("Category").Preload("Author").First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// GetPublishedBySlug 按 slug 查找已发布的文章，供前台阅读页使用。
func (s *ArticleService) GetPublishedBySlug(slug string) (*db.Article, error) {
	var article db.Article
	if err := s.db.Preload("Tags").Preload("Category").Preload("Author").
		Where("slug = ? AND status = ?", slug, db.StatusPublished).
		First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// Save 创建或更新文章（id 为 0 表示创建）。
// 文章行与完整的标签关联集在同一事务内写入，任一步失败则整体回滚。
func (s *ArticleService) Save(id uint, input ArticleInput) (*db.Article, error) {
	title := strings.TrimSpace(input.Title)
	titleLength := utf8.RuneCountInString(title)
	if titleLength < 1 || titleLength > maxTitleLength {
		return nil, ErrTitleRequired
	}

	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrContentRequired
	}

	// 未识别的状态静默降级为草稿
	status := input.Status
	if !db.ValidStatus(status) {
		status = db.StatusDraft
	}

	slug, err := s.resolveSlug(title, id)
	if err != nil {
		return nil, err
	}

	excerpt := strings.TrimSpace(input.Excerpt)
	if excerpt == "" {
		excerpt = GenerateExcerpt(input.Content)
	}

	var article db.Article
	if id > 0 {
		if err := s.db.First(&article, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrArticleNotFound
			}
			return nil, err
		}
	} else {
		article.AuthorID = input.AuthorID
	}

	article.Title = title
	article.Slug = slug
	article.Content = input.Content
	article.Excerpt = excerpt
	article.CategoryID = input.CategoryID
	article.Status = status
	article.Featured = input.Featured

	return s.saveWithTags(&article, input.TagIDs)
}

// resolveSlug 从标题推导 slug，与其他文章冲突时追加时间戳后缀消歧。
func (s *ArticleService) resolveSlug(title string, articleID uint) (string, error) {
	slug := Slugify(title)

	var existing db.Article
	err := s.db.Where("slug = ? AND id <> ?", slug, articleID).First(&existing).Error
	if err == nil {
		return fmt.Sprintf("%s-%d", slug, time.Now().Unix()), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	return slug, nil
}

func (s *ArticleService) saveWithTags(article *db.Article, tagIDs []uint) (*db.Article, error) {
	return article, s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(article).Error; err != nil {
			return err
		}

		var tags []db.Tag
		if len(tagIDs) > 0 {
			if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
				return err
			}

			if len(tags) != len(tagIDs) {
				return ErrTagNotFound
			}
		}

		if err := tx.Model(article).Association("Tags").Replace(tags); err != nil {
			return err
		}

		return tx.Preload("Tags").First(article, article.ID).Error
	})
}

// Delete removes an article and its tag associations. Hard delete, no guard.
func (s *ArticleService) Delete(id uint) error {
	var article db.Article
	if err := s.db.First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArticleNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&article).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Unscoped().Delete(&article).Error
	})
}

// BulkUpdateStatus 将选中的文章批量切换到给定状态。
func (s *ArticleService) BulkUpdateStatus(ids []uint, status string) error {
	if len(ids) == 0 {
		return ErrNoSelection
	}
	if !db.ValidStatus(status) {
		return ErrInvalidStatus
	}

	return s.db.Model(&db.Article{}).Where("id IN ?", ids).Update("status", status).Error
}

// BulkDelete 批量删除文章及其标签关联。
func (s *ArticleService) BulkDelete(ids []uint) error {
	if len(ids) == 0 {
		return ErrNoSelection
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM article_tags WHERE article_id IN ?", ids).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id IN ?", ids).Delete(&db.Article{}).Error
	})
}

// IncrementViews 以数据库端的原子自增累加阅读计数，避免并发丢失更新。
func (s *ArticleService) IncrementViews(id uint) error {
	return s.db.Model(&db.Article{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// List provides paginated articles based on filters. The zero Sort orders by
// last update (admin listing); browse views pass recent/popular/alphabetical.
func (s *ArticleService) List(filter ArticleFilter) (*ArticleListResult, error) {
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 12
	}

	countQuery := s.applyFilters(s.db.Model(&db.Article{}), filter)

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, err
	}

	pagination := Paginate(filter.Page, total, perPage)

	dataQuery := s.applyFilters(s.db.Model(&db.Article{}), filter).
		Preload("Tags").
		Preload("Category").
		Preload("Author")

	var articles []db.Article
	if err := dataQuery.
		Order(orderClause(filter.Sort)).
		Limit(pagination.PerPage).
		Offset(pagination.Offset).
		Find(&articles).Error; err != nil {
		return nil, err
	}

	return &ArticleListResult{Articles: articles, Pagination: pagination}, nil
}

func (s *ArticleService) applyFilters(query *gorm.DB, filter ArticleFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	if filter.Featured {
		query = query.Where("featured = ?", true)
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("(title LIKE ? OR content LIKE ?)", pattern, pattern)
	}

	return query
}

func orderClause(sort string) string {
	switch sort {
	case "recent":
		return "created_at desc"
	case "popular":
		return "views desc, created_at desc"
	case "alphabetical":
		return "title asc"
	default:
		return "updated_at desc"
	}
}

// Featured 返回最新的精选文章，用于首页推荐位。
func (s *ArticleService) Featured(limit int) ([]db.Article, error) {
	return s.publishedSet(limit, "featured = ?", "created_at desc", true)
}

// Recent 返回最新发布的文章。
func (s *ArticleService) Recent(limit int) ([]db.Article, error) {
	return s.publishedSet(limit, "", "created_at desc")
}

// Popular 返回阅读量最高的文章。
func (s *ArticleService) Popular(limit int) ([]db.Article, error) {
	return s.publishedSet(limit, "views > ?", "views desc", 0)
}

func (s *ArticleService) publishedSet(limit int, condition, order string, args ...interface{}) ([]db.Article, error) {
	query := s.db.Preload("Category").Where("status = ?", db.StatusPublished)
	if condition != "" {
		query = query.Where(condition, args...)
	}

	var articles []db.Article
	if err := query.Order(order).Limit(limit).Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// Related 返回同分类下的其他已发布文章，按热度与时间排序。
func (s *ArticleService) Related(article *db.Article, limit int) ([]db.Article, error) {
	if article.CategoryID == nil {
		return nil, nil
	}

	var related []db.Article
	if err := s.db.
		Where("category_id = ? AND id <> ? AND status = ?", *article.CategoryID, article.ID, db.StatusPublished).
		Order("views desc, created_at desc").
		Limit(limit).
		Find(&related).Error; err != nil {
		return nil, err
	}
	return related, nil
}

// Adjacent 返回按 id 顺序相邻的上一篇与下一篇已发布文章，供阅读页导航。
// 任一侧不存在时对应指针为 nil。
func (s *ArticleService) Adjacent(id uint) (prev, next *db.Article, err error) {
	var previous db.Article
	err = s.db.Where("id < ? AND status = ?", id, db.StatusPublished).
		Order("id desc").First(&previous).Error
	if err == nil {
		prev = &previous
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	var following db.Article
	err = s.db.Where("id > ? AND status = ?", id, db.StatusPublished).
		Order("id asc").First(&following).Error
	if err == nil {
		next = &following
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	return prev, next, nil
}

// Stats 汇总仪表盘与首页需要的统计数据。
func (s *ArticleService) Stats() (*Stats, error) {
	stats := &Stats{}

	if err := s.db.Model(&db.Article{}).Count(&stats.TotalArticles).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&db.Article{}).Where("status = ?", db.StatusPublished).Count(&stats.PublishedArticles).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&db.Article{}).Where("status = ?", db.StatusDraft).Count(&stats.DraftArticles).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&db.Category{}).Count(&stats.TotalCategories).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&db.Tag{}).Count(&stats.TotalTags).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&db.Article{}).
		Select("COALESCE(SUM(views), 0)").
		Scan(&stats.TotalViews).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
