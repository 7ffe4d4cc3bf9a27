package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const csrfSessionKey = "csrf_token"

// csrfToken 返回当前会话的防伪令牌，首次访问时惰性生成。
func (a *API) csrfToken(c *gin.Context) string {
	session := sessions.Default(c)

	if token, ok := session.Get(csrfSessionKey).(string); ok && token != "" {
		return token
	}

	token := uuid.NewString()
	session.Set(csrfSessionKey, token)
	_ = session.Save()
	return token
}

// rotateCSRFToken 重新生成会话令牌，登录成功后调用以防会话固定。
func rotateCSRFToken(session sessions.Session) {
	session.Set(csrfSessionKey, uuid.NewString())
}

// RequireToken 校验每个修改状态的请求都携带与会话一致的防伪令牌。
// 校验失败时中止操作（不产生任何局部效果）并重定向到安全页面。
func (a *API) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		stored, _ := session.Get(csrfSessionKey).(string)

		submitted := c.PostForm(a.cfg.CSRFTokenName)
		if submitted == "" {
			submitted = c.GetHeader("X-CSRF-Token")
		}

		if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
			a.log.Warn().
				Str("path", c.Request.URL.Path).
				Msg("rejected request with invalid anti-forgery token")
			setFlash(c, "error", "安全令牌无效，请重试")
			c.Redirect(http.StatusFound, "/admin")
			c.Abort()
			return
		}

		c.Next()
	}
}
