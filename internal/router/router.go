package router

import (
	"html/template"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/kbase/internal/config"
	"github.com/kbase/internal/handler"
)

// Setup 配置 Gin 引擎和路由
func Setup(cfg config.AppConfig, api *handler.API) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件，cookie 有效期即会话超时策略
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionTimeout,
		HttpOnly: true,
	})
	r.Use(sessions.Sessions("kbase_session", store))

	// 加载模板并添加自定义函数
	r.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"deref": func(p *uint) uint {
			if p == nil {
				return 0
			}
			return *p
		},
		"seq": func(from, to int) []int {
			if to < from {
				return nil
			}
			pages := make([]int, 0, to-from+1)
			for i := from; i <= to; i++ {
				pages = append(pages, i)
			}
			return pages
		},
	})
	r.LoadHTMLGlob("web/template/**/*.html")

	// 静态文件服务
	r.Static("/static", "./web/static")

	// 前台路由
	r.GET("/", api.ShowHome)
	r.GET("/browse", api.ShowBrowse)
	r.GET("/article/:slug", api.ShowArticle)
	r.GET("/search", api.ShowSearch)

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.GET("/login", api.ShowLoginPage)
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)

		// 需要认证的后台路由
		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("", api.ShowDashboard)
			auth.GET("/articles", api.ShowArticleList)
			auth.GET("/articles/new", api.ShowArticleForm)
			auth.GET("/articles/:id/edit", api.ShowArticleForm)
			auth.GET("/categories", api.ShowCategoryList)
			auth.GET("/categories/new", api.ShowCategoryForm)
			auth.GET("/categories/:id/edit", api.ShowCategoryForm)
			auth.GET("/tags", api.ShowTagList)

			// 所有修改状态的请求都必须通过防伪令牌校验
			mutate := auth.Group("")
			mutate.Use(api.RequireToken())
			{
				mutate.POST("/articles/save", api.SaveArticle)
				mutate.POST("/articles/delete", api.DeleteArticle)
				mutate.POST("/articles/bulk", api.BulkArticleAction)
				mutate.POST("/categories/save", api.SaveCategory)
				mutate.POST("/categories/delete", api.DeleteCategory)
				mutate.POST("/tags/save", api.SaveTag)
				mutate.POST("/tags/delete", api.DeleteTag)
				mutate.POST("/tags/bulk-delete", api.BulkDeleteTags)
			}
		}
	}

	return r
}
