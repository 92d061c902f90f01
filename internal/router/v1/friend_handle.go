package v1

import (
	"context"
	"strconv"

	"SocialServer/consts"
	"SocialServer/internal/dto"
	"SocialServer/internal/middleware"
	"SocialServer/internal/service"
	"SocialServer/pkg/logger"
	"SocialServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// FriendHandler 好友处理器
type FriendHandler struct {
	friendService service.IFriendService
}

// NewFriendHandler 创建好友处理器
func NewFriendHandler(friendService service.IFriendService) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
	}
}

// SendRequest 发送好友申请接口
// @Router /api/v1/friend/request [post]
func (h *FriendHandler) SendRequest(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	// 1. 绑定请求数据
	var req dto.SendFriendRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		// 参数错误由客户端输入导致,属于正常业务流程,不记录日志
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	// 2. 调用服务层处理业务逻辑
	item, err := h.friendService.SendRequest(ctx, userUUID, req.ToUuid)
	if err != nil {
		code := service.CodeOf(err)
		if consts.IsNonServerError(code) {
			// 业务逻辑失败（如用户不存在、已经是好友等）
			result.Fail(c, nil, code)
			return
		}

		logger.Error(ctx, "发送好友申请服务内部错误",
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, item)
}

// AcceptRequest 同意好友申请接口
// @Router /api/v1/friend/request/:id/accept [post]
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	h.handleRequest(c, h.friendService.AcceptRequest, "同意好友申请服务内部错误")
}

// RejectRequest 拒绝好友申请接口
// @Router /api/v1/friend/request/:id/reject [post]
func (h *FriendHandler) RejectRequest(c *gin.Context) {
	h.handleRequest(c, h.friendService.RejectRequest, "拒绝好友申请服务内部错误")
}

// handleRequest 同意/拒绝的公共流程：解析申请 id 并调用对应服务方法
func (h *FriendHandler) handleRequest(c *gin.Context, fn func(ctx context.Context, userUUID string, requestID int64) error, errMsg string) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	requestID, ok := parseRequestID(c)
	if !ok {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	if err := fn(ctx, userUUID, requestID); err != nil {
		code := service.CodeOf(err)
		if consts.IsNonServerError(code) {
			result.Fail(c, nil, code)
			return
		}

		logger.Error(ctx, errMsg,
			logger.Int64("request_id", requestID),
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, nil)
}

// GetFriendRequests 获取收到的待处理申请列表
// @Router /api/v1/friend/requests [get]
func (h *FriendHandler) GetFriendRequests(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	items, err := h.friendService.GetFriendRequests(ctx, userUUID)
	if err != nil {
		logger.Error(ctx, "获取好友申请列表服务内部错误",
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, items)
}

// GetAllFriendRequests 获取收发的全部申请列表
// @Router /api/v1/friend/requests/all [get]
func (h *FriendHandler) GetAllFriendRequests(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	items, err := h.friendService.GetAllFriendRequests(ctx, userUUID)
	if err != nil {
		logger.Error(ctx, "获取全部好友申请服务内部错误",
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, items)
}

// CheckFriendship 查询与指定用户的好友关系
// @Router /api/v1/friends/check/:peerUuid [get]
func (h *FriendHandler) CheckFriendship(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	peerUUID := c.Param("peerUuid")
	if peerUUID == "" {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	isFriend, err := h.friendService.AreFriends(ctx, userUUID, peerUUID)
	if err != nil {
		logger.Error(ctx, "查询好友关系服务内部错误",
			logger.String("peer_uuid", peerUUID),
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, &dto.FriendshipStatus{IsFriend: isFriend})
}

// GetFriends 获取好友列表
// @Router /api/v1/friends [get]
func (h *FriendHandler) GetFriends(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	userUUID, _ := middleware.GetUserUUID(c)

	friends, err := h.friendService.GetFriends(ctx, userUUID)
	if err != nil {
		logger.Error(ctx, "获取好友列表服务内部错误",
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, friends)
}

// parseRequestID 解析路径里的申请 id
func parseRequestID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
