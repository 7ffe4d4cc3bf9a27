package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kbase/internal/service"
)

// ShowDashboard 渲染后台主面板：站点统计与最近、最热文章
func (a *API) ShowDashboard(c *gin.Context) {
	stats, err := a.articles.Stats()
	if err != nil {
		a.log.Error().Err(err).Msg("failed to load dashboard stats")
		stats = &service.Stats{}
	}

	recent, err := a.articles.List(service.ArticleFilter{Page: 1, PerPage: 5})
	if err != nil {
		a.log.Error().Err(err).Msg("failed to load recent articles")
		recent = &service.ArticleListResult{}
	}

	popular, err := a.articles.List(service.ArticleFilter{Sort: "popular", Page: 1, PerPage: 5})
	if err != nil {
		a.log.Error().Err(err).Msg("failed to load popular articles")
		popular = &service.ArticleListResult{}
	}

	a.renderHTML(c, http.StatusOK, "dashboard.html", gin.H{
		"title":    "管理面板",
		"username": currentUsername(c),
		"stats":    stats,
		"recent":   recent.Articles,
		"popular":  popular.Articles,
	})
}
