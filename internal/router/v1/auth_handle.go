package v1

import (
	"fmt"
	"net/http"
	"net/url"

	"SocialServer/consts"
	"SocialServer/internal/middleware"
	"SocialServer/internal/service"
	"SocialServer/pkg/logger"
	"SocialServer/pkg/result"
	"SocialServer/pkg/util"

	"github.com/gin-gonic/gin"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 600 // 秒
)

// AuthHandler 认证处理器
type AuthHandler struct {
	authService service.IAuthService
	frontendURL string
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authService service.IAuthService, frontendURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		frontendURL: frontendURL,
	}
}

// GoogleLogin 发起 Google 登录
// 生成随机 state 写入短期 Cookie，然后 302 跳转到授权页。
// @Router /auth/google [get]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := util.NewUUID()
	authURL, err := h.authService.AuthCodeURL(state)
	if err != nil {
		result.Fail(c, nil, service.CodeOf(err))
		return
	}

	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/", "", false, true)
	c.Redirect(http.StatusFound, authURL)
}

// GoogleCallback Google 授权回调
// 校验 state 后用授权码完成登录，携带 token 跳转回前端。
// @Router /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	state := c.Query("state")
	cookieState, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != cookieState {
		// state 不匹配说明回调不是本服务发起的授权流程，直接拒绝
		result.Fail(c, nil, consts.CodeParamError)
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	login, err := h.authService.LoginWithGoogle(ctx, c.Query("code"))
	if err != nil {
		code := service.CodeOf(err)
		if !consts.IsNonServerError(code) {
			logger.Error(ctx, "Google 登录服务内部错误",
				logger.ErrorField("error", err),
			)
			code = consts.CodeInternalError
		}
		// 回调是浏览器跳转场景，失败也跳回前端并带上错误码
		c.Redirect(http.StatusFound, fmt.Sprintf("%s/auth/callback?error=%d", h.frontendURL, code))
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("%s/auth/callback?token=%s", h.frontendURL, url.QueryEscape(login.Token)))
}

// Me 获取当前登录用户资料
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	userUUID, ok := middleware.GetUserUUID(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	profile, err := h.authService.GetProfile(ctx, userUUID)
	if err != nil {
		code := service.CodeOf(err)
		if !consts.IsNonServerError(code) {
			logger.Error(ctx, "获取用户资料服务内部错误",
				logger.ErrorField("error", err),
			)
			code = consts.CodeInternalError
		}
		result.Fail(c, nil, code)
		return
	}

	result.Success(c, profile)
}

// Logout 登出
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	userUUID, ok := middleware.GetUserUUID(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	if err := h.authService.Logout(ctx, userUUID); err != nil {
		logger.Error(ctx, "登出服务内部错误",
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, nil)
}
