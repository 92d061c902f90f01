package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"SocialServer/consts"
	"SocialServer/internal/dto"
	"SocialServer/internal/service"
	"SocialServer/pkg/logger"
	"SocialServer/pkg/result"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var handlerTestLoggerOnce sync.Once

func initHandlerTestLogger() {
	handlerTestLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

type fakeFriendService struct {
	sendRequestFn   func(ctx context.Context, fromUUID, toUUID string) (*dto.FriendRequestItem, error)
	acceptRequestFn func(ctx context.Context, userUUID string, requestID int64) error
	rejectRequestFn func(ctx context.Context, userUUID string, requestID int64) error
	areFriendsFn    func(ctx context.Context, a, b string) (bool, error)
	getFriendsFn    func(ctx context.Context, userUUID string) ([]*dto.UserBrief, error)
}

var _ service.IFriendService = (*fakeFriendService)(nil)

func (f *fakeFriendService) SendRequest(ctx context.Context, fromUUID, toUUID string) (*dto.FriendRequestItem, error) {
	if f.sendRequestFn == nil {
		return &dto.FriendRequestItem{Id: "1"}, nil
	}
	return f.sendRequestFn(ctx, fromUUID, toUUID)
}

func (f *fakeFriendService) AcceptRequest(ctx context.Context, userUUID string, requestID int64) error {
	if f.acceptRequestFn == nil {
		return nil
	}
	return f.acceptRequestFn(ctx, userUUID, requestID)
}

func (f *fakeFriendService) RejectRequest(ctx context.Context, userUUID string, requestID int64) error {
	if f.rejectRequestFn == nil {
		return nil
	}
	return f.rejectRequestFn(ctx, userUUID, requestID)
}

func (f *fakeFriendService) AreFriends(ctx context.Context, a, b string) (bool, error) {
	if f.areFriendsFn == nil {
		return false, nil
	}
	return f.areFriendsFn(ctx, a, b)
}

func (f *fakeFriendService) GetFriendRequests(ctx context.Context, userUUID string) ([]*dto.FriendRequestItem, error) {
	return nil, nil
}

func (f *fakeFriendService) GetAllFriendRequests(ctx context.Context, userUUID string) ([]*dto.FriendRequestItem, error) {
	return nil, nil
}

func (f *fakeFriendService) GetFriends(ctx context.Context, userUUID string) ([]*dto.UserBrief, error) {
	if f.getFriendsFn == nil {
		return nil, nil
	}
	return f.getFriendsFn(ctx, userUUID)
}

func (f *fakeFriendService) ListFriendUUIDs(ctx context.Context, userUUID string) ([]string, error) {
	return nil, nil
}

// newFriendTestRouter 组装仅含好友路由的引擎，认证中间件用直接注入身份替代
func newFriendTestRouter(svc service.IFriendService, userUUID string) *gin.Engine {
	initHandlerTestLogger()
	gin.SetMode(gin.TestMode)

	h := NewFriendHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_uuid", userUUID)
		c.Next()
	})
	r.POST("/api/v1/friend/request", h.SendRequest)
	r.POST("/api/v1/friend/request/:id/accept", h.AcceptRequest)
	r.POST("/api/v1/friend/request/:id/reject", h.RejectRequest)
	r.GET("/api/v1/friends", h.GetFriends)
	r.GET("/api/v1/friends/check/:peerUuid", h.CheckFriendship)
	return r
}

func doJSONRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, *result.Response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp result.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, &resp
}

func TestFriendHandler_SendRequest(t *testing.T) {
	var gotFrom, gotTo string
	svc := &fakeFriendService{
		sendRequestFn: func(ctx context.Context, fromUUID, toUUID string) (*dto.FriendRequestItem, error) {
			gotFrom = fromUUID
			gotTo = toUUID
			return &dto.FriendRequestItem{Id: "100"}, nil
		},
	}
	r := newFriendTestRouter(svc, "u-1")

	w, resp := doJSONRequest(t, r, http.MethodPost, "/api/v1/friend/request", gin.H{
		"toUuid": "ba7b810-9dad-11d1-80b4-00c04fd430c8",
	})
	// 非 uuid 格式被绑定校验拦下
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, consts.CodeParamError, resp.Code)

	w, resp = doJSONRequest(t, r, http.MethodPost, "/api/v1/friend/request", gin.H{
		"toUuid": "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, consts.CodeSuccess, resp.Code)
	assert.Equal(t, "u-1", gotFrom)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", gotTo)
}

// 业务失败走统一响应：HTTP 始终 200，错误码在 body 里
func TestFriendHandler_SendRequest_BizError(t *testing.T) {
	svc := &fakeFriendService{
		sendRequestFn: func(ctx context.Context, fromUUID, toUUID string) (*dto.FriendRequestItem, error) {
			return nil, service.NewBizError(consts.CodeAlreadyFriend)
		},
	}
	r := newFriendTestRouter(svc, "u-1")

	w, resp := doJSONRequest(t, r, http.MethodPost, "/api/v1/friend/request", gin.H{
		"toUuid": "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, consts.CodeAlreadyFriend, resp.Code)
	assert.Equal(t, consts.GetMessage(consts.CodeAlreadyFriend), resp.Message)
}

func TestFriendHandler_AcceptRequest(t *testing.T) {
	var gotUser string
	var gotID int64
	svc := &fakeFriendService{
		acceptRequestFn: func(ctx context.Context, userUUID string, requestID int64) error {
			gotUser = userUUID
			gotID = requestID
			return nil
		},
	}
	r := newFriendTestRouter(svc, "u-2")

	_, resp := doJSONRequest(t, r, http.MethodPost, "/api/v1/friend/request/100/accept", nil)
	assert.Equal(t, consts.CodeSuccess, resp.Code)
	assert.Equal(t, "u-2", gotUser)
	assert.Equal(t, int64(100), gotID)
}

func TestFriendHandler_AcceptRequest_BadID(t *testing.T) {
	called := false
	svc := &fakeFriendService{
		acceptRequestFn: func(ctx context.Context, userUUID string, requestID int64) error {
			called = true
			return nil
		},
	}
	r := newFriendTestRouter(svc, "u-2")

	_, resp := doJSONRequest(t, r, http.MethodPost, "/api/v1/friend/request/abc/accept", nil)
	assert.Equal(t, consts.CodeParamError, resp.Code)
	assert.False(t, called)
}

func TestFriendHandler_RejectRequest_Handled(t *testing.T) {
	svc := &fakeFriendService{
		rejectRequestFn: func(ctx context.Context, userUUID string, requestID int64) error {
			return service.NewBizError(consts.CodeRequestHandled)
		},
	}
	r := newFriendTestRouter(svc, "u-2")

	_, resp := doJSONRequest(t, r, http.MethodPost, "/api/v1/friend/request/100/reject", nil)
	assert.Equal(t, consts.CodeRequestHandled, resp.Code)
}

func TestFriendHandler_CheckFriendship(t *testing.T) {
	svc := &fakeFriendService{
		areFriendsFn: func(ctx context.Context, a, b string) (bool, error) {
			return a == "u-1" && b == "u-2", nil
		},
	}
	r := newFriendTestRouter(svc, "u-1")

	_, resp := doJSONRequest(t, r, http.MethodGet, "/api/v1/friends/check/u-2", nil)
	require.Equal(t, consts.CodeSuccess, resp.Code)
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var status dto.FriendshipStatus
	require.NoError(t, json.Unmarshal(raw, &status))
	assert.True(t, status.IsFriend)

	_, resp = doJSONRequest(t, r, http.MethodGet, "/api/v1/friends/check/u-9", nil)
	require.Equal(t, consts.CodeSuccess, resp.Code)
	raw, err = json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &status))
	assert.False(t, status.IsFriend)
}

func TestFriendHandler_GetFriends(t *testing.T) {
	svc := &fakeFriendService{
		getFriendsFn: func(ctx context.Context, userUUID string) ([]*dto.UserBrief, error) {
			return []*dto.UserBrief{
				{Uuid: "u-2", Name: "peer", IsOnline: true},
			}, nil
		},
	}
	r := newFriendTestRouter(svc, "u-1")

	_, resp := doJSONRequest(t, r, http.MethodGet, "/api/v1/friends", nil)
	require.Equal(t, consts.CodeSuccess, resp.Code)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var friends []*dto.UserBrief
	require.NoError(t, json.Unmarshal(raw, &friends))
	require.Len(t, friends, 1)
	assert.Equal(t, "u-2", friends[0].Uuid)
	assert.True(t, friends[0].IsOnline)
}
