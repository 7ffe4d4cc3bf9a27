package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kbase/internal/service"
)

// ShowTagList 渲染后台标签列表及使用数量
func (a *API) ShowTagList(c *gin.Context) {
	tags, err := a.tags.ListWithCounts()
	if err != nil {
		a.log.Error().Err(err).Msg("failed to list tags")
		setFlash(c, "error", "获取标签列表失败")
	}

	a.renderHTML(c, http.StatusOK, "tag_list.html", gin.H{
		"title": "标签管理",
		"tags":  tags,
	})
}

// SaveTag 处理标签创建与更新，名称重复时直接拒绝
func (a *API) SaveTag(c *gin.Context) {
	id := parseUintForm(c, "tag_id")

	tag, err := a.tags.Save(id, c.PostForm("name"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTagName):
			setFlash(c, "error", "标签名称不能为空，且长度不能超过50个字符")
		case errors.Is(err, service.ErrDuplicateTag):
			setFlash(c, "error", "同名标签已存在")
		case errors.Is(err, service.ErrTagNotFound):
			setFlash(c, "error", "标签不存在")
		default:
			a.log.Error().Err(err).Uint("tag_id", id).Msg("failed to save tag")
			setFlash(c, "error", a.saveFailureNotice(err))
		}
		c.Redirect(http.StatusFound, "/admin/tags")
		return
	}

	if id == 0 {
		setFlash(c, "success", fmt.Sprintf("标签 %s 创建成功", tag.Name))
	} else {
		setFlash(c, "success", fmt.Sprintf("标签 %s 更新成功", tag.Name))
	}
	c.Redirect(http.StatusFound, "/admin/tags")
}

// DeleteTag 无条件删除标签并解除其与文章的关联
func (a *API) DeleteTag(c *gin.Context) {
	id := parseUintForm(c, "tag_id")
	if id == 0 {
		setFlash(c, "error", "无效的标签ID")
		c.Redirect(http.StatusFound, "/admin/tags")
		return
	}

	if err := a.tags.Delete(id); err != nil {
		if errors.Is(err, service.ErrTagNotFound) {
			setFlash(c, "error", "标签不存在")
		} else {
			a.log.Error().Err(err).Uint("tag_id", id).Msg("failed to delete tag")
			setFlash(c, "error", a.saveFailureNotice(err))
		}
		c.Redirect(http.StatusFound, "/admin/tags")
		return
	}

	setFlash(c, "success", "标签删除成功")
	c.Redirect(http.StatusFound, "/admin/tags")
}

// BulkDeleteTags 批量删除选中的标签
func (a *API) BulkDeleteTags(c *gin.Context) {
	ids := parseUintSlice(c.PostFormArray("selected_ids"))

	if err := a.tags.BulkDelete(ids); err != nil {
		if errors.Is(err, service.ErrNoSelection) {
			setFlash(c, "error", "未选择任何标签")
		} else {
			a.log.Error().Err(err).Msg("bulk tag delete failed")
			setFlash(c, "error", a.saveFailureNotice(err))
		}
		c.Redirect(http.StatusFound, "/admin/tags")
		return
	}

	setFlash(c, "success", fmt.Sprintf("%d 个标签已删除", len(ids)))
	c.Redirect(http.StatusFound, "/admin/tags")
}
