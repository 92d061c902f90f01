package service

import (
	"errors"

	"SocialServer/consts"
	"SocialServer/internal/repository"
)

// BizError 业务错误：携带错误码，Handler 和网关据此生成响应。
// 业务错误是正常流程的一部分，不在 Service 层打错误日志。
type BizError struct {
	Code    int32
	Message string
}

func (e *BizError) Error() string {
	return e.Message
}

// NewBizError 用错误码创建业务错误，消息取码表默认文案
func NewBizError(code int32) *BizError {
	return &BizError{Code: code, Message: consts.GetMessage(code)}
}

// NewBizErrorWithMessage 用错误码和自定义消息创建业务错误
func NewBizErrorWithMessage(code int32, message string) *BizError {
	return &BizError{Code: code, Message: message}
}

// CodeOf 提取错误对应的错误码。
// 非 BizError 的错误统一归为内部错误。
func CodeOf(err error) int32 {
	if err == nil {
		return consts.CodeSuccess
	}

	var bizErr *BizError
	if errors.As(err, &bizErr) {
		return bizErr.Code
	}
	return consts.CodeInternalError
}

// wrapRepoError 将 Repository 错误翻译成业务错误。
// notFoundCode 指定"记录不存在"映射到的业务码；其余数据库错误原样上抛由上层归为内部错误。
func wrapRepoError(err error, notFoundCode int32) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrRecordNotFound) {
		return NewBizError(notFoundCode)
	}
	return err
}
