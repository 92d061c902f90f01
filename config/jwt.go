package config

import (
	"os"
	"time"
)

// JWTConfig 签发与校验 Token 的配置。
type JWTConfig struct {
	Secret string        `json:"secret" yaml:"secret"`
	Issuer string        `json:"issuer" yaml:"issuer"`
	Expire time.Duration `json:"expire" yaml:"expire"`
}

// DefaultJWTConfig 返回默认配置。
// Secret 必须通过 JWT_SECRET 覆盖，默认值仅供本地调试。
func DefaultJWTConfig() JWTConfig {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "socialserver-dev-secret"
	}
	return JWTConfig{
		Secret: secret,
		Issuer: "socialserver",
		Expire: 7 * 24 * time.Hour,
	}
}
