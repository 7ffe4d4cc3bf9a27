package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kbase/internal/service"
)

// ShowArticleList 渲染后台文章列表，支持状态、分类与关键词过滤
func (a *API) ShowArticleList(c *gin.Context) {
	filter := service.ArticleFilter{
		Status:     strings.TrimSpace(c.Query("status")),
		CategoryID: optionalUint(c.Query("category")),
		Search:     strings.TrimSpace(c.Query("search")),
		Page:       parsePositiveInt(c.DefaultQuery("page", "1"), 1),
		PerPage:    a.cfg.ArticlesPerPage,
	}

	result, err := a.articles.List(filter)
	if err != nil {
		a.log.Error().Err(err).Msg("failed to list articles")
		setFlash(c, "error", "获取文章列表失败")
		result = &service.ArticleListResult{}
	}

	categories, err := a.categories.List()
	if err != nil {
		a.log.Error().Err(err).Msg("failed to list categories")
	}

	a.renderHTML(c, http.StatusOK, "article_list.html", gin.H{
		"title":      "文章管理",
		"articles":   result.Articles,
		"pagination": result.Pagination,
		"categories": categories,
		"status":     filter.Status,
		"search":     filter.Search,
	})
}

// ShowArticleForm 渲染文章新建或编辑表单
func (a *API) ShowArticleForm(c *gin.Context) {
	data := gin.H{"title": "新建文章"}

	if raw := c.Param("id"); raw != "" {
		id, err := parseUintParam(c, "id")
		if err != nil {
			setFlash(c, "error", "无效的文章ID")
			c.Redirect(http.StatusFound, "/admin/articles")
			return
		}

		article, err := a.articles.Get(id)
		if err != nil {
			setFlash(c, "error", "文章不存在")
			c.Redirect(http.StatusFound, "/admin/articles")
			return
		}

		selected := make(map[uint]bool, len(article.Tags))
		for _, tag := range article.Tags {
			selected[tag.ID] = true
		}

		data["title"] = "编辑文章"
		data["article"] = article
		data["selectedTags"] = selected
	}

	categories, err := a.categories.List()
	if err != nil {
		a.log.Error().Err(err).Msg("failed to list categories")
	}
	tags, err := a.tags.List()
	if err != nil {
		a.log.Error().Err(err).Msg("failed to list tags")
	}

	data["categories"] = categories
	data["tags"] = tags
	a.renderHTML(c, http.StatusOK, "article_form.html", data)
}

// SaveArticle 处理文章创建与更新的表单提交
func (a *API) SaveArticle(c *gin.Context) {
	id := parseUintForm(c, "article_id")

	input := service.ArticleInput{
		Title:      c.PostForm("title"),
		Content:    c.PostForm("content"),
		Excerpt:    c.PostForm("excerpt"),
		CategoryID: optionalUint(c.PostForm("category_id")),
		Status:     c.PostForm("status"),
		Featured:   c.PostForm("featured") != "",
		TagIDs:     parseUintSlice(c.PostFormArray("tags")),
	}
	if id == 0 {
		input.AuthorID = currentUserID(c)
	}

	formURL := "/admin/articles/new"
	if id > 0 {
		formURL = fmt.Sprintf("/admin/articles/%d/edit", id)
	}

	article, err := a.articles.Save(id, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTitleRequired):
			setFlash(c, "error", "标题不能为空，且长度不能超过255个字符")
		case errors.Is(err, service.ErrContentRequired):
			setFlash(c, "error", "正文不能为空")
		case errors.Is(err, service.ErrTagNotFound):
			setFlash(c, "error", "选择的标签不存在")
		case errors.Is(err, service.ErrArticleNotFound):
			setFlash(c, "error", "文章不存在")
			c.Redirect(http.StatusFound, "/admin/articles")
			return
		default:
			a.log.Error().Err(err).Uint("article_id", id).Msg("failed to save article")
			setFlash(c, "error", a.saveFailureNotice(err))
		}
		c.Redirect(http.StatusFound, formURL)
		return
	}

	if id == 0 {
		setFlash(c, "success", "文章创建成功")
	} else {
		setFlash(c, "success", "文章更新成功")
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/admin/articles/%d/edit", article.ID))
}

// DeleteArticle 硬删除文章及其标签关联
func (a *API) DeleteArticle(c *gin.Context) {
	id := parseUintForm(c, "article_id")
	if id == 0 {
		setFlash(c, "error", "无效的文章ID")
		c.Redirect(http.StatusFound, "/admin/articles")
		return
	}

	if err := a.articles.Delete(id); err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			setFlash(c, "error", "文章不存在")
		} else {
			a.log.Error().Err(err).Uint("article_id", id).Msg("failed to delete article")
			setFlash(c, "error", a.saveFailureNotice(err))
		}
		c.Redirect(http.StatusFound, "/admin/articles")
		return
	}

	setFlash(c, "success", "文章删除成功")
	c.Redirect(http.StatusFound, "/admin/articles")
}

// BulkArticleAction 对选中的文章批量发布、下线、归档或删除
func (a *API) BulkArticleAction(c *gin.Context) {
	action := c.PostForm("bulk_action")
	ids := parseUintSlice(c.PostFormArray("selected_ids"))

	var err error
	var notice string
	switch action {
	case "publish":
		err = a.articles.BulkUpdateStatus(ids, "published")
		notice = fmt.Sprintf("%d 篇文章已发布", len(ids))
	case "draft":
		err = a.articles.BulkUpdateStatus(ids, "draft")
		notice = fmt.Sprintf("%d 篇文章已转为草稿", len(ids))
	case "archive":
		err = a.articles.BulkUpdateStatus(ids, "archived")
		notice = fmt.Sprintf("%d 篇文章已归档", len(ids))
	case "delete":
		err = a.articles.BulkDelete(ids)
		notice = fmt.Sprintf("%d 篇文章已删除", len(ids))
	default:
		setFlash(c, "error", "无效的批量操作")
		c.Redirect(http.StatusFound, "/admin/articles")
		return
	}

	if err != nil {
		if errors.Is(err, service.ErrNoSelection) {
			setFlash(c, "error", "未选择任何文章")
		} else {
			a.log.Error().Err(err).Str("action", action).Msg("bulk article action failed")
			setFlash(c, "error", a.saveFailureNotice(err))
		}
		c.Redirect(http.StatusFound, "/admin/articles")
		return
	}

	setFlash(c, "success", notice)
	c.Redirect(http.StatusFound, "/admin/articles")
}

// saveFailureNotice 生成持久化失败的用户提示。
// 仅在调试模式下附带内部错误详情，生产环境不向终端用户泄漏。
func (a *API) saveFailureNotice(err error) string {
	if a.cfg.DebugMode {
		return "保存失败：" + err.Error()
	}
	return "保存失败，请稍后重试"
}
