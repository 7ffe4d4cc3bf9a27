package service

import (
	"strings"

	"github.com/kbase/internal/db"
	"gorm.io/gorm"
)

// SearchService builds filtered and ranked queries over published articles.
type SearchService struct {
	db *gorm.DB
}

// SearchFilter describes a search request.
type SearchFilter struct {
	Query      string
	CategoryID *uint
	Sort       string // relevance, recent, popular, alphabetical
	Page       int
	PerPage    int
}

// SearchHit 是一条搜索结果及其上下文摘要。
type SearchHit struct {
	Article db.Article
	Excerpt string
}

// SearchResult aggregates search hits and pagination data. Performed is
// false when the query was blank and no search ran; zero hits with
// Performed=true is a normal outcome, not an error.
type SearchResult struct {
	Performed  bool
	Query      string
	Hits       []SearchHit
	Pagination Pagination
}

// NewSearchService creates a SearchService instance.
func NewSearchService(gdb *gorm.DB) *SearchService {
	return &SearchService{db: gdb}
}

// Search 对已发布文章执行多词条件搜索：查询串按空白切分，
// 每个词都必须命中标题、正文或摘要之一（子串匹配，不区分大小写）。
func (s *SearchService) Search(filter SearchFilter) (*SearchResult, error) {
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 10
	}

	query := strings.TrimSpace(filter.Query)
	if query == "" {
		return &SearchResult{
			Performed:  false,
			Pagination: Paginate(1, 0, perPage),
		}, nil
	}

	countQuery := s.applyConditions(s.db.Model(&db.Article{}), query, filter.CategoryID)

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, err
	}

	pagination := Paginate(filter.Page, total, perPage)

	result := &SearchResult{
		Performed:  true,
		Query:      query,
		Pagination: pagination,
	}
	if total == 0 {
		return result, nil
	}

	dataQuery := s.applyConditions(s.db.Model(&db.Article{}), query, filter.CategoryID).
		Preload("Tags").
		Preload("Category").
		Preload("Author")

	switch filter.Sort {
	case "recent":
		dataQuery = dataQuery.Order("created_at desc")
	case "popular":
		dataQuery = dataQuery.Order("views desc, created_at desc")
	case "alphabetical":
		dataQuery = dataQuery.Order("title asc")
	default:
		// 相关性排序：标题整串命中优先，其次标题前缀命中，再按热度与时间。
		// 通过带绑定参数的计算列表达，避免拼接用户输入。
		dataQuery = dataQuery.
			Select("articles.*, (title LIKE ?) AS query_in_title, (title LIKE ?) AS query_is_prefix",
				"%"+query+"%", query+"%").
			Order("query_in_title desc, query_is_prefix desc, views desc, created_at desc")
	}

	var articles []db.Article
	if err := dataQuery.
		Limit(pagination.PerPage).
		Offset(pagination.Offset).
		Find(&articles).Error; err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(articles))
	for _, article := range articles {
		hits = append(hits, SearchHit{
			Article: article,
			Excerpt: SearchExcerpt(article.Content, query),
		})
	}

	result.Hits = hits
	return result, nil
}

func (s *SearchService) applyConditions(query *gorm.DB, text string, categoryID *uint) *gorm.DB {
	query = query.Where("status = ?", db.StatusPublished)

	for _, term := range strings.Fields(text) {
		pattern := "%" + term + "%"
		query = query.Where("(title LIKE ? OR content LIKE ? OR excerpt LIKE ?)", pattern, pattern, pattern)
	}

	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	return query
}
