package handler

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kbase/internal/service"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// ShowHome 渲染站点首页：精选、最新、热门文章与分类导航
func (a *API) ShowHome(c *gin.Context) {
	featured, err := a.articles.Featured(6)
	if err != nil {
		a.log.Error().Err(err).Msg("failed to load featured articles")
	}
	recent, err := a.articles.Recent(8)
	if err != nil {
		a.log.Error().Err(err).Msg("failed to load recent articles")
	}
	popular, err := a.articles.Popular(6)
	if err != nil {
		a.log.Error().Err(err).Msg("failed to load popular articles")
	}

	categories, err := a.categories.ListPublished()
	if err != nil {
		a.log.Error().Err(err).Msg("failed to load categories")
	}
	if len(categories) > 8 {
		categories = categories[:8]
	}

	stats, err := a.articles.Stats()
	if err != nil {
		a.log.Error().Err(err).Msg("failed to load site stats")
		stats = &service.Stats{}
	}

	a.renderHTML(c, http.StatusOK, "home.html", gin.H{
		"title":      "首页",
		"featured":   featured,
		"recent":     recent,
		"popular":    popular,
		"categories": categories,
		"stats":      stats,
	})
}

// ShowBrowse 渲染文章浏览页，支持分类、精选过滤与排序
func (a *API) ShowBrowse(c *gin.Context) {
	sort := c.DefaultQuery("sort", "recent")

	filter := service.ArticleFilter{
		Status:   "published",
		Featured: c.Query("featured") != "",
		Sort:     sort,
		Page:     parsePositiveInt(c.DefaultQuery("page", "1"), 1),
		PerPage:  a.cfg.ArticlesPerPage,
	}

	var selectedCategory string
	if slug := strings.TrimSpace(c.Query("category")); slug != "" {
		category, err := a.categories.GetBySlug(slug)
		if err != nil {
			setFlash(c, "error", "分类不存在")
			c.Redirect(http.StatusFound, "/browse")
			return
		}
		filter.CategoryID = &category.ID
		selectedCategory = category.Name
	}

	result, err := a.articles.List(filter)
	if err != nil {
		a.log.Error().Err(err).Msg("failed to browse articles")
		setFlash(c, "error", "获取文章失败")
		result = &service.ArticleListResult{}
	}

	categories, err := a.categories.ListPublished()
	if err != nil {
		a.log.Error().Err(err).Msg("failed to load categories")
	}

	a.renderHTML(c, http.StatusOK, "browse.html", gin.H{
		"title":            "浏览文章",
		"articles":         result.Articles,
		"pagination":       result.Pagination,
		"categories":       categories,
		"selectedCategory": selectedCategory,
		"sort":             sort,
	})
}

// ShowArticle 渲染文章阅读页并累加一次阅读计数
func (a *API) ShowArticle(c *gin.Context) {
	slug := c.Param("slug")

	article, err := a.articles.GetPublishedBySlug(slug)
	if err != nil {
		setFlash(c, "error", "文章不存在或尚未发布")
		c.Redirect(http.StatusFound, "/")
		return
	}

	// 阅读计数失败不阻断页面渲染
	if err := a.articles.IncrementViews(article.ID); err != nil {
		a.log.Error().Err(err).Uint("article_id", article.ID).Msg("failed to increment views")
	} else {
		article.Views++
	}

	content, err := renderMarkdown(article.Content)
	if err != nil {
		a.log.Error().Err(err).Uint("article_id", article.ID).Msg("failed to render article content")
		content = template.HTML(template.HTMLEscapeString(article.Content))
	}

	related, err := a.articles.Related(article, 5)
	if err != nil {
		a.log.Error().Err(err).Msg("failed to load related articles")
	}

	prev, next, err := a.articles.Adjacent(article.ID)
	if err != nil {
		a.log.Error().Err(err).Msg("failed to load adjacent articles")
	}

	a.renderHTML(c, http.StatusOK, "article.html", gin.H{
		"title":    article.Title,
		"article":  article,
		"content":  content,
		"related":  related,
		"previous": prev,
		"next":     next,
	})
}

// ShowSearch 渲染搜索页：空查询展示搜索引导，否则执行搜索
func (a *API) ShowSearch(c *gin.Context) {
	filter := service.SearchFilter{
		Query:      c.Query("q"),
		CategoryID: optionalUint(c.Query("category")),
		Sort:       c.DefaultQuery("sort", "relevance"),
		Page:       parsePositiveInt(c.DefaultQuery("page", "1"), 1),
		PerPage:    a.cfg.SearchPerPage,
	}

	result, err := a.search.Search(filter)
	if err != nil {
		a.log.Error().Err(err).Str("query", filter.Query).Msg("search failed")
		setFlash(c, "error", "搜索失败，请稍后重试")
		result = &service.SearchResult{}
	}

	categories, err := a.categories.ListPublished()
	if err != nil {
		a.log.Error().Err(err).Msg("failed to load categories")
	}

	title := "搜索文章"
	if result.Performed {
		title = "搜索：" + result.Query
	}

	a.renderHTML(c, http.StatusOK, "search.html", gin.H{
		"title":      title,
		"performed":  result.Performed,
		"query":      result.Query,
		"hits":       result.Hits,
		"pagination": result.Pagination,
		"categories": categories,
		"sort":       filter.Sort,
	})
}

func renderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes())), nil
}
