package config

import (
	"os"
	"time"
)

// ServerConfig HTTP 服务运行参数。
// 这些超时用于限制异常连接占用资源，避免慢连接拖垮服务。
// 注意：/ws 是长连接入口，ReadTimeout/WriteTimeout 不能对其生效，
// 因此这里只设置 ReadHeaderTimeout，连接级超时由 gateway 自己管理。
type ServerConfig struct {
	Addr              string        `json:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
	MaxHeaderBytes    int           `json:"maxHeaderBytes" yaml:"maxHeaderBytes"`

	// FrontendURL 前端地址，OAuth 回调完成后携带 token 跳转到这里。
	FrontendURL string `json:"frontendUrl" yaml:"frontendUrl"`
}

// DefaultServerConfig 返回默认配置。
// 端口优先读取 SERVER_ADDR，未设置时默认监听 :8080。
func DefaultServerConfig() ServerConfig {
	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	frontend := os.Getenv("FRONTEND_URL")
	if frontend == "" {
		frontend = "http://localhost:5173"
	}
	return ServerConfig{
		Addr:              addr,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
		FrontendURL:       frontend,
	}
}
