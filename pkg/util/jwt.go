package util

import (
	"errors"
	"time"

	"SocialServer/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid 表示 token 非法（签名错误/格式错误/claims 缺失）。
	ErrTokenInvalid = errors.New("token is invalid")
	// ErrTokenExpired 表示 token 已过期。
	ErrTokenExpired = errors.New("token is expired")
)

// jwtCfg 进程级 JWT 配置，启动时通过 InitJWT 注入一次。
var jwtCfg = config.DefaultJWTConfig()

// InitJWT 注入签发配置（仅需在进程启动时调用一次）。
func InitJWT(cfg config.JWTConfig) {
	jwtCfg = cfg
}

// Claims 自定义的 JWT Claims。
// 只承载用户身份，其余信息全部走数据库查询，避免 token 里的资料过期。
type Claims struct {
	UserUUID string `json:"user_uuid"`
	jwt.RegisteredClaims
}

// GenerateToken 为用户签发 HS256 Token。
func GenerateToken(userUUID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserUUID: userUUID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtCfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtCfg.Expire)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtCfg.Secret))
}

// ParseToken 解析并校验 Token。
// 区分过期与非法两种失败：过期可提示客户端重新登录，非法直接拒绝。
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(jwtCfg.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserUUID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
