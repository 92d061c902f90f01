package config

import "os"

// LoggerConfig 日志配置。
type LoggerConfig struct {
	Level       string `json:"level" yaml:"level"`             // 日志级别: debug/info/warn/error
	Encoding    string `json:"encoding" yaml:"encoding"`       // 编码: json/console
	EnableColor bool   `json:"enableColor" yaml:"enableColor"` // console 模式下是否着色
	Development bool   `json:"development" yaml:"development"` // 开发模式（error 级别带堆栈）

	OutputPaths      []string `json:"outputPaths" yaml:"outputPaths"`           // 普通日志输出，支持 stdout/stderr/文件
	ErrorOutputPaths []string `json:"errorOutputPaths" yaml:"errorOutputPaths"` // 错误日志输出
}

// DefaultLoggerConfig 返回本地开发的默认配置。
// 默认输出 stdout（容器场景方便 docker logs），级别可通过 LOG_LEVEL 覆盖。
func DefaultLoggerConfig() LoggerConfig {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	return LoggerConfig{
		Level:            level,
		Encoding:         "json",
		EnableColor:      false,
		Development:      false,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
}
