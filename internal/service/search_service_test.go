package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kbase/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSearchServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:search-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Category{}, &db.Tag{}, &db.Article{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

func createSearchArticle(t *testing.T, articles *ArticleService, title, content, status string) *db.Article {
	t.Helper()
	article, err := articles.Save(0, ArticleInput{Title: title, Content: content, Status: status})
	if err != nil {
		t.Fatalf("save article %q: %v", title, err)
	}
	return article
}

func TestSearchService_BlankQuerySkipsSearch(t *testing.T) {
	gdb := setupSearchServiceTestDB(t)
	svc := NewSearchService(gdb)

	result, err := svc.Search(SearchFilter{Query: "   "})
	if err != nil {
		t.Fatalf("search with blank query: %v", err)
	}
	if result.Performed {
		t.Fatalf("expected blank query to skip the search")
	}
	if len(result.Hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(result.Hits))
	}
}

func TestSearchService_RequiresEveryTerm(t *testing.T) {
	gdb := setupSearchServiceTestDB(t)
	articles := NewArticleService(gdb)
	svc := NewSearchService(gdb)

	both := createSearchArticle(t, articles, "Docker Compose 指南", "covers docker and compose together", db.StatusPublished)
	createSearchArticle(t, articles, "Docker 基础", "only docker here", db.StatusPublished)
	createSearchArticle(t, articles, "Compose 草稿", "docker compose in a draft", db.StatusDraft)

	result, err := svc.Search(SearchFilter{Query: "docker compose"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !result.Performed {
		t.Fatalf("expected search to run")
	}
	if len(result.Hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(result.Hits))
	}
	if result.Hits[0].Article.ID != both.ID {
		t.Fatalf("expected article %d, got %d", both.ID, result.Hits[0].Article.ID)
	}
}

func TestSearchService_MatchesExcerptToo(t *testing.T) {
	gdb := setupSearchServiceTestDB(t)
	articles := NewArticleService(gdb)
	svc := NewSearchService(gdb)

	if _, err := articles.Save(0, ArticleInput{
		Title:   "无关标题",
		Content: "正文也无关",
		Excerpt: "手写摘要里提到 terraform 工具",
		Status:  db.StatusPublished,
	}); err != nil {
		t.Fatalf("save article: %v", err)
	}

	result, err := svc.Search(SearchFilter{Query: "terraform"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Hits) != 1 {
		t.Fatalf("expected excerpt match to count, got %d hits", len(result.Hits))
	}
}

func TestSearchService_HitCarriesContextualExcerpt(t *testing.T) {
	gdb := setupSearchServiceTestDB(t)
	articles := NewArticleService(gdb)
	svc := NewSearchService(gdb)

	content := strings.Repeat("opening filler words ", 30) +
		"the grafana dashboard setup lives here " +
		strings.Repeat("closing filler words ", 30)
	createSearchArticle(t, articles, "监控入门", content, db.StatusPublished)

	result, err := svc.Search(SearchFilter{Query: "grafana"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(result.Hits))
	}
	if !strings.Contains(result.Hits[0].Excerpt, "grafana") {
		t.Fatalf("expected excerpt around the match, got %q", result.Hits[0].Excerpt)
	}
	if !strings.HasPrefix(result.Hits[0].Excerpt, "...") {
		t.Fatalf("expected leading ellipsis in windowed excerpt, got %q", result.Hits[0].Excerpt)
	}
}

func TestSearchService_RelevanceOrdering(t *testing.T) {
	gdb := setupSearchServiceTestDB(t)
	articles := NewArticleService(gdb)
	svc := NewSearchService(gdb)

	contentOnly := createSearchArticle(t, articles, "其他内容", "nginx appears only in the body", db.StatusPublished)
	titleContains := createSearchArticle(t, articles, "部署 nginx 服务", "body text", db.StatusPublished)
	titlePrefix := createSearchArticle(t, articles, "nginx 配置详解", "body text", db.StatusPublished)

	// 仅正文命中的文章阅读量最高，相关性排序仍应让标题命中靠前
	for i := 0; i < 10; i++ {
		if err := articles.IncrementViews(contentOnly.ID); err != nil {
			t.Fatalf("increment views: %v", err)
		}
	}

	result, err := svc.Search(SearchFilter{Query: "nginx"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(result.Hits))
	}
	if result.Hits[0].Article.ID != titlePrefix.ID {
		t.Fatalf("expected title prefix match first, got article %d", result.Hits[0].Article.ID)
	}
	if result.Hits[1].Article.ID != titleContains.ID {
		t.Fatalf("expected title substring match second, got article %d", result.Hits[1].Article.ID)
	}
	if result.Hits[2].Article.ID != contentOnly.ID {
		t.Fatalf("expected body-only match last, got article %d", result.Hits[2].Article.ID)
	}
}

func TestSearchService_SortOverrides(t *testing.T) {
	gdb := setupSearchServiceTestDB(t)
	articles := NewArticleService(gdb)
	svc := NewSearchService(gdb)

	older := createSearchArticle(t, articles, "golang part one", "正文", db.StatusPublished)
	time.Sleep(10 * time.Millisecond)
	newer := createSearchArticle(t, articles, "golang part two", "正文", db.StatusPublished)

	for i := 0; i < 5; i++ {
		if err := articles.IncrementViews(older.ID); err != nil {
			t.Fatalf("increment views: %v", err)
		}
	}

	recent, err := svc.Search(SearchFilter{Query: "golang", Sort: "recent"})
	if err != nil {
		t.Fatalf("search sorted by recent: %v", err)
	}
	if recent.Hits[0].Article.ID != newer.ID {
		t.Fatalf("expected newest first, got article %d", recent.Hits[0].Article.ID)
	}

	popular, err := svc.Search(SearchFilter{Query: "golang", Sort: "popular"})
	if err != nil {
		t.Fatalf("search sorted by popular: %v", err)
	}
	if popular.Hits[0].Article.ID != older.ID {
		t.Fatalf("expected most viewed first, got article %d", popular.Hits[0].Article.ID)
	}
}

func TestSearchService_CategoryFilter(t *testing.T) {
	gdb := setupSearchServiceTestDB(t)
	articles := NewArticleService(gdb)
	svc := NewSearchService(gdb)

	category := db.Category{Name: "教程", Slug: "tutorials"}
	if err := gdb.Create(&category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}

	inCategory, err := articles.Save(0, ArticleInput{
		Title:      "分类内的 ansible 文章",
		Content:    "正文",
		Status:     db.StatusPublished,
		CategoryID: &category.ID,
	})
	if err != nil {
		t.Fatalf("save categorized article: %v", err)
	}
	createSearchArticle(t, articles, "分类外的 ansible 文章", "正文", db.StatusPublished)

	result, err := svc.Search(SearchFilter{Query: "ansible", CategoryID: &category.ID})
	if err != nil {
		t.Fatalf("search with category filter: %v", err)
	}
	if len(result.Hits) != 1 || result.Hits[0].Article.ID != inCategory.ID {
		t.Fatalf("expected only the categorized hit, got %d hits", len(result.Hits))
	}
}

func TestSearchService_PaginationClampsPage(t *testing.T) {
	gdb := setupSearchServiceTestDB(t)
	articles := NewArticleService(gdb)
	svc := NewSearchService(gdb)

	for i := 1; i <= 3; i++ {
		createSearchArticle(t, articles, fmt.Sprintf("prometheus 笔记 %d", i), "正文", db.StatusPublished)
	}

	result, err := svc.Search(SearchFilter{Query: "prometheus", Page: 99, PerPage: 2})
	if err != nil {
		t.Fatalf("search with out of range page: %v", err)
	}
	if result.Pagination.CurrentPage != 2 {
		t.Fatalf("expected page clamped to 2, got %d", result.Pagination.CurrentPage)
	}
	if len(result.Hits) != 1 {
		t.Fatalf("expected 1 hit on the last page, got %d", len(result.Hits))
	}
	if result.Pagination.TotalItems != 3 {
		t.Fatalf("expected 3 total hits, got %d", result.Pagination.TotalItems)
	}
}
