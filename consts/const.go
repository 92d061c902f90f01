package consts

// 通用错误码
const (
	CodeSuccess int32 = 0 // 成功
)

// 客户端错误 (1xxxx)
const (
	CodeParamError       int32 = 10001 // 参数验证失败
	CodeBodyError        int32 = 10002 // 请求体格式错误
	CodeResourceNotFound int32 = 10003 // 资源不存在
	CodeTooManyRequests  int32 = 10005 // 请求过于频繁
	CodeBodyTooLarge     int32 = 10006 // 请求体过大
)

// 认证错误 (2xxxx)
const (
	CodeUnauthorized   int32 = 20001 // 未认证
	CodeInvalidToken   int32 = 20002 // Token 无效
	CodeTokenExpired   int32 = 20003 // Token 已过期
	CodePermissionDeny int32 = 20004 // 权限不足
)

// 用户模块错误 (11xxx)
const (
	CodeUserNotFound     int32 = 11001 // 用户不存在
	CodeUserAlreadyExist int32 = 11002 // 用户已存在
	CodeEmailConflict    int32 = 11003 // 邮箱已被占用
)

// 好友模块错误 (12xxx)
const (
	CodeAlreadyFriend     int32 = 12001 // 已经是好友
	CodeFriendRequestSent int32 = 12002 // 待处理的好友申请已存在
	CodeNotFriend         int32 = 12003 // 不存在该好友关系
	CodeRequestNotFound   int32 = 12004 // 好友申请不存在
	CodeRequestHandled    int32 = 12005 // 好友申请已被处理
	CodeSelfRequest       int32 = 12006 // 不能向自己发送好友申请
	CodeNotRequestTarget  int32 = 12007 // 只有申请接收方可以处理该申请
)

// 消息模块错误 (13xxx)
const (
	CodeMessageNotFound int32 = 13001 // 消息不存在
	CodeMessageEmpty    int32 = 13002 // 消息内容不能为空
	CodeMessageTooLong  int32 = 13003 // 消息内容超出长度限制
	CodeMessageSendFail int32 = 13004 // 消息发送失败
)

// 动态模块错误 (14xxx)
const (
	CodePostNotFound int32 = 14001 // 动态不存在
	CodeNotPostOwner int32 = 14002 // 不是动态的作者
	CodePostEmpty    int32 = 14003 // 动态内容不能为空
	CodePostTooLong  int32 = 14004 // 动态文本超出长度限制
)

// 服务端错误 (3xxxx)
const (
	CodeInternalError      int32 = 30001 // 服务器内部错误
	CodeServiceUnavailable int32 = 30002 // 服务暂不可用
	CodeUpstreamError      int32 = 30003 // 上游服务（OAuth/对象存储）调用失败
)

// 业务长度上限
const (
	// MaxMessageTextLen 单条私信文本最大长度（字符数）
	MaxMessageTextLen = 1000
	// MaxPostTextLen 单条动态文本最大长度（字符数）
	MaxPostTextLen = 5000
)

// 错误消息映射
var CodeMessage = map[int32]string{
	CodeSuccess: "success",

	// 客户端错误
	CodeParamError:       "参数验证失败",
	CodeBodyError:        "请求体格式错误",
	CodeResourceNotFound: "资源不存在",
	CodeTooManyRequests:  "请求过于频繁",
	CodeBodyTooLarge:     "请求体过大",

	// 认证错误
	CodeUnauthorized:   "未认证",
	CodeInvalidToken:   "Token 无效",
	CodeTokenExpired:   "Token 已过期",
	CodePermissionDeny: "权限不足",

	// 用户模块
	CodeUserNotFound:     "用户不存在",
	CodeUserAlreadyExist: "用户已存在",
	CodeEmailConflict:    "邮箱已被占用",

	// 好友模块
	CodeAlreadyFriend:     "已经是好友",
	CodeFriendRequestSent: "待处理的好友申请已存在",
	CodeNotFriend:         "不存在该好友关系",
	CodeRequestNotFound:   "好友申请不存在",
	CodeRequestHandled:    "好友申请已被处理",
	CodeSelfRequest:       "不能向自己发送好友申请",
	CodeNotRequestTarget:  "只有申请接收方可以处理该申请",

	// 消息模块
	CodeMessageNotFound: "消息不存在",
	CodeMessageEmpty:    "消息内容不能为空",
	CodeMessageTooLong:  "消息内容超出长度限制",
	CodeMessageSendFail: "消息发送失败",

	// 动态模块
	CodePostNotFound: "动态不存在",
	CodeNotPostOwner: "不是动态的作者",
	CodePostEmpty:    "动态内容不能为空",
	CodePostTooLong:  "动态文本超出长度限制",

	// 服务端错误
	CodeInternalError:      "服务器内部错误",
	CodeServiceUnavailable: "服务暂不可用",
	CodeUpstreamError:      "上游服务调用失败",
}

// GetMessage 根据错误码获取错误消息
func GetMessage(code int32) string {
	if msg, ok := CodeMessage[code]; ok {
		return msg
	}
	return "未知错误"
}

// IsNonServerError 判断是否为业务错误（非服务端内部错误）
// 业务错误由客户端输入或业务规则触发，属于正常流程，不需要记录错误日志。
func IsNonServerError(code int32) bool {
	return code != CodeSuccess && code < 30000
}
