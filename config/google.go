package config

import (
	"errors"
	"os"
	"strings"
	"time"
)

// GoogleOAuthConfig Google OAuth 配置。
// 启动时用 Validate 做快速失败校验：占位符凭据直接判定为未配置，
// 而不是等到第一次登录请求时才在运行期报错。
type GoogleOAuthConfig struct {
	ClientID     string `json:"clientId" yaml:"clientId"`
	ClientSecret string `json:"clientSecret" yaml:"clientSecret"`
	CallbackURL  string `json:"callbackUrl" yaml:"callbackUrl"`

	// ExchangeTimeout 授权码换取用户资料的整体超时
	ExchangeTimeout time.Duration `json:"exchangeTimeout" yaml:"exchangeTimeout"`
}

// ErrGoogleOAuthNotConfigured 表示凭据缺失或仍是占位符。
// main 收到该错误后把登录功能标记为禁用，而不是让进程带病运行。
var ErrGoogleOAuthNotConfigured = errors.New("google oauth not configured")

// DefaultGoogleOAuthConfig 从环境变量读取 Google OAuth 配置。
func DefaultGoogleOAuthConfig() GoogleOAuthConfig {
	callback := os.Getenv("GOOGLE_CALLBACK_URL")
	if callback == "" {
		callback = "http://localhost:8080/auth/google/callback"
	}
	return GoogleOAuthConfig{
		ClientID:        strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")),
		ClientSecret:    strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_SECRET")),
		CallbackURL:     strings.TrimSpace(callback),
		ExchangeTimeout: 10 * time.Second,
	}
}

// Validate 校验配置可用性。
// 占位符检测：示例配置里常见的 "your-google-client-id" 之类的值视为未配置。
func (c GoogleOAuthConfig) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return ErrGoogleOAuthNotConfigured
	}
	if strings.Contains(c.ClientID, "your-google-client-id") ||
		strings.Contains(c.ClientSecret, "your-google-client-secret") {
		return ErrGoogleOAuthNotConfigured
	}
	return nil
}
