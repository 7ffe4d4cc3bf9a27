package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kbase/internal/service"
)

// ShowCategoryList 渲染后台分类列表及各分类的文章数量
func (a *API) ShowCategoryList(c *gin.Context) {
	categories, err := a.categories.ListWithCounts()
	if err != nil {
		a.log.Error().Err(err).Msg("failed to list categories")
		setFlash(c, "error", "获取分类列表失败")
	}

	a.renderHTML(c, http.StatusOK, "category_list.html", gin.H{
		"title":      "分类管理",
		"categories": categories,
	})
}

// ShowCategoryForm 渲染分类新建或编辑表单
func (a *API) ShowCategoryForm(c *gin.Context) {
	data := gin.H{"title": "新建分类"}

	if raw := c.Param("id"); raw != "" {
		id, err := parseUintParam(c, "id")
		if err != nil {
			setFlash(c, "error", "无效的分类ID")
			c.Redirect(http.StatusFound, "/admin/categories")
			return
		}

		category, err := a.categories.Get(id)
		if err != nil {
			setFlash(c, "error", "分类不存在")
			c.Redirect(http.StatusFound, "/admin/categories")
			return
		}

		data["title"] = "编辑分类"
		data["category"] = category
	}

	a.renderHTML(c, http.StatusOK, "category_form.html", data)
}

// SaveCategory 处理分类创建与更新，名称重复时直接拒绝
func (a *API) SaveCategory(c *gin.Context) {
	id := parseUintForm(c, "category_id")

	formURL := "/admin/categories/new"
	if id > 0 {
		formURL = fmt.Sprintf("/admin/categories/%d/edit", id)
	}

	category, err := a.categories.Save(id, c.PostForm("name"), c.PostForm("description"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryName):
			setFlash(c, "error", "分类名称不能为空，且长度不能超过100个字符")
		case errors.Is(err, service.ErrDuplicateCategory):
			setFlash(c, "error", "同名分类已存在")
		case errors.Is(err, service.ErrCategoryNotFound):
			setFlash(c, "error", "分类不存在")
			c.Redirect(http.StatusFound, "/admin/categories")
			return
		default:
			a.log.Error().Err(err).Uint("category_id", id).Msg("failed to save category")
			setFlash(c, "error", a.saveFailureNotice(err))
		}
		c.Redirect(http.StatusFound, formURL)
		return
	}

	if id == 0 {
		setFlash(c, "success", "分类创建成功")
	} else {
		setFlash(c, "success", "分类更新成功")
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/admin/categories/%d/edit", category.ID))
}

// DeleteCategory 删除分类，仍有文章引用时拒绝且不产生任何变更
func (a *API) DeleteCategory(c *gin.Context) {
	id := parseUintForm(c, "category_id")
	if id == 0 {
		setFlash(c, "error", "无效的分类ID")
		c.Redirect(http.StatusFound, "/admin/categories")
		return
	}

	if err := a.categories.Delete(id); err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotEmpty):
			setFlash(c, "error", "该分类下仍有文章，请先移动或删除文章")
		case errors.Is(err, service.ErrCategoryNotFound):
			setFlash(c, "error", "分类不存在")
		default:
			a.log.Error().Err(err).Uint("category_id", id).Msg("failed to delete category")
			setFlash(c, "error", a.saveFailureNotice(err))
		}
		c.Redirect(http.StatusFound, "/admin/categories")
		return
	}

	setFlash(c, "success", "分类删除成功")
	c.Redirect(http.StatusFound, "/admin/categories")
}
