package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/kbase/internal/db"
	"github.com/kbase/internal/service"
)

// 会话中保存的登录状态字段
const (
	sessionUserID    = "user_id"
	sessionUsername  = "username"
	sessionEmail     = "email"
	sessionRole      = "role"
	sessionLoginTime = "login_time"
)

// ShowLoginPage 渲染登录页面，已登录用户直接跳转后台
func (a *API) ShowLoginPage(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get(sessionUserID) != nil {
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	a.renderHTML(c, http.StatusOK, "login.html", gin.H{
		"title": "管理员登录",
	})
}

// Login 处理登录请求：按用户名或邮箱查找账号并校验密码
func (a *API) Login(c *gin.Context) {
	identifier := c.PostForm("username")
	password := c.PostForm("password")

	user, err := a.auth.Authenticate(identifier, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			a.renderHTML(c, http.StatusUnauthorized, "login.html", gin.H{
				"title": "管理员登录",
				"error": "用户名或密码错误",
			})
			return
		}

		a.log.Error().Err(err).Msg("login query failed")
		a.renderHTML(c, http.StatusInternalServerError, "login.html", gin.H{
			"title": "管理员登录",
			"error": "登录失败，请稍后重试",
		})
		return
	}

	// 建立会话并轮换防伪令牌，防止会话固定
	session := sessions.Default(c)
	session.Set(sessionUserID, user.ID)
	session.Set(sessionUsername, user.Username)
	session.Set(sessionEmail, user.Email)
	session.Set(sessionRole, user.Role)
	session.Set(sessionLoginTime, time.Now().Unix())
	rotateCSRFToken(session)
	if err := session.Save(); err != nil {
		a.log.Error().Err(err).Msg("failed to save session")
		a.renderHTML(c, http.StatusInternalServerError, "login.html", gin.H{
			"title": "管理员登录",
			"error": "会话保存失败",
		})
		return
	}

	setFlash(c, "success", "欢迎回来，"+user.Username)
	c.Redirect(http.StatusFound, "/admin")
}

// Logout 清空会话并使 cookie 失效
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = session.Save()
	c.Redirect(http.StatusFound, "/admin/login")
}

// AuthRequired 认证中间件：未登录跳转登录页，角色不符则拒绝进入后台
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserID) == nil {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}

		role, _ := session.Get(sessionRole).(string)
		if role != db.RoleAdmin && role != db.RoleEditor {
			session.Clear()
			_ = session.Save()
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}

		c.Next()
	}
}

// currentUserID 返回当前登录用户的 id，未登录时返回 nil。
func currentUserID(c *gin.Context) *uint {
	session := sessions.Default(c)
	if id, ok := session.Get(sessionUserID).(uint); ok {
		return &id
	}
	return nil
}

func currentUsername(c *gin.Context) string {
	session := sessions.Default(c)
	if name, ok := session.Get(sessionUsername).(string); ok {
		return name
	}
	return ""
}
