package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kbase/internal/config"
	"github.com/kbase/internal/service"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db         *gorm.DB
	cfg        config.AppConfig
	log        zerolog.Logger
	auth       *service.AuthService
	articles   *service.ArticleService
	categories *service.CategoryService
	tags       *service.TagService
	search     *service.SearchService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, cfg config.AppConfig, log zerolog.Logger) *API {
	return &API{
		db:         gdb,
		cfg:        cfg,
		log:        log,
		auth:       service.NewAuthService(gdb, cfg.MinPasswordLength),
		articles:   service.NewArticleService(gdb),
		categories: service.NewCategoryService(gdb),
		tags:       service.NewTagService(gdb),
		search:     service.NewSearchService(gdb),
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// renderHTML 渲染模板并自动附加站点信息、闪存消息与防伪令牌。
func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["siteName"]; !exists {
		payload["siteName"] = a.cfg.SiteName
	}
	if _, exists := payload["siteBaseURL"]; !exists {
		payload["siteBaseURL"] = a.cfg.SiteBaseURL
	}
	if _, exists := payload["flashes"]; !exists {
		payload["flashes"] = takeFlashes(c)
	}
	if _, exists := payload["csrfField"]; !exists {
		payload["csrfField"] = a.cfg.CSRFTokenName
	}
	if _, exists := payload["csrfToken"]; !exists {
		payload["csrfToken"] = a.csrfToken(c)
	}
	payload["year"] = time.Now().Year()

	c.HTML(status, template, payload)
}
