package service

import (
	"context"
	"io"
	"sync"
	"time"

	"SocialServer/internal/repository"
	"SocialServer/model"
	"SocialServer/pkg/logger"
	"SocialServer/pkg/minio"
	"SocialServer/pkg/oauth"

	"go.uber.org/zap"
)

var serviceTestLoggerOnce sync.Once

func initServiceTestLogger() {
	serviceTestLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

var (
	_ repository.IUserRepository    = (*fakeUserRepo)(nil)
	_ repository.IFriendRepository  = (*fakeFriendRepo)(nil)
	_ repository.IRequestRepository = (*fakeRequestRepo)(nil)
	_ repository.IMessageRepository = (*fakeMessageRepo)(nil)
	_ repository.IPostRepository    = (*fakePostRepo)(nil)
	_ IdentityProvider              = (*fakeIdentityProvider)(nil)
	_ ObjectStore                   = (*fakeObjectStore)(nil)
)

// ==================== Repository fakes ====================

type fakeUserRepo struct {
	getByUUIDFn     func(context.Context, string) (*model.UserInfo, error)
	getByGoogleIDFn func(context.Context, string) (*model.UserInfo, error)
	getByEmailFn    func(context.Context, string) (*model.UserInfo, error)
	createFn        func(context.Context, *model.UserInfo) error
	linkGoogleFn    func(context.Context, string, string, string) error
	updatePresFn    func(context.Context, string, bool) error
	batchGetFn      func(context.Context, []string) ([]*model.UserInfo, error)
}

func (f *fakeUserRepo) GetByUUID(ctx context.Context, uuid string) (*model.UserInfo, error) {
	if f.getByUUIDFn == nil {
		return &model.UserInfo{Uuid: uuid}, nil
	}
	return f.getByUUIDFn(ctx, uuid)
}

func (f *fakeUserRepo) GetByGoogleID(ctx context.Context, googleID string) (*model.UserInfo, error) {
	if f.getByGoogleIDFn == nil {
		return nil, repository.ErrRecordNotFound
	}
	return f.getByGoogleIDFn(ctx, googleID)
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.UserInfo, error) {
	if f.getByEmailFn == nil {
		return nil, repository.ErrRecordNotFound
	}
	return f.getByEmailFn(ctx, email)
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.UserInfo) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, user)
}

func (f *fakeUserRepo) LinkGoogleAccount(ctx context.Context, uuid, googleID, avatar string) error {
	if f.linkGoogleFn == nil {
		return nil
	}
	return f.linkGoogleFn(ctx, uuid, googleID, avatar)
}

func (f *fakeUserRepo) UpdatePresence(ctx context.Context, uuid string, online bool) error {
	if f.updatePresFn == nil {
		return nil
	}
	return f.updatePresFn(ctx, uuid, online)
}

func (f *fakeUserRepo) BatchGetByUUIDs(ctx context.Context, uuids []string) ([]*model.UserInfo, error) {
	if f.batchGetFn == nil {
		users := make([]*model.UserInfo, 0, len(uuids))
		for _, uuid := range uuids {
			users = append(users, &model.UserInfo{Uuid: uuid})
		}
		return users, nil
	}
	return f.batchGetFn(ctx, uuids)
}

type fakeFriendRepo struct {
	addEdgeFn     func(context.Context, string, string) error
	isFriendFn    func(context.Context, string, string) (bool, error)
	listUUIDsFn   func(context.Context, string) ([]string, error)
	listFriendsFn func(context.Context, string) ([]*model.UserInfo, error)
}

func (f *fakeFriendRepo) AddFriendEdge(ctx context.Context, userUUID, friendUUID string) error {
	if f.addEdgeFn == nil {
		return nil
	}
	return f.addEdgeFn(ctx, userUUID, friendUUID)
}

func (f *fakeFriendRepo) IsFriend(ctx context.Context, userUUID, friendUUID string) (bool, error) {
	if f.isFriendFn == nil {
		return false, nil
	}
	return f.isFriendFn(ctx, userUUID, friendUUID)
}

func (f *fakeFriendRepo) ListFriendUUIDs(ctx context.Context, userUUID string) ([]string, error) {
	if f.listUUIDsFn == nil {
		return nil, nil
	}
	return f.listUUIDsFn(ctx, userUUID)
}

func (f *fakeFriendRepo) ListFriends(ctx context.Context, userUUID string) ([]*model.UserInfo, error) {
	if f.listFriendsFn == nil {
		return nil, nil
	}
	return f.listFriendsFn(ctx, userUUID)
}

type fakeRequestRepo struct {
	createFn         func(context.Context, *model.FriendRequest) error
	getByIDFn        func(context.Context, int64) (*model.FriendRequest, error)
	findPendingFn    func(context.Context, string, string) (*model.FriendRequest, error)
	updateStatusFn   func(context.Context, int64, int8) (bool, error)
	listReceivedFn   func(context.Context, string) ([]*model.FriendRequest, error)
	listAllForUserFn func(context.Context, string) ([]*model.FriendRequest, error)
}

func (f *fakeRequestRepo) Create(ctx context.Context, req *model.FriendRequest) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, req)
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id int64) (*model.FriendRequest, error) {
	if f.getByIDFn == nil {
		return nil, repository.ErrRecordNotFound
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeRequestRepo) FindPendingBetween(ctx context.Context, a, b string) (*model.FriendRequest, error) {
	if f.findPendingFn == nil {
		return nil, repository.ErrRecordNotFound
	}
	return f.findPendingFn(ctx, a, b)
}

func (f *fakeRequestRepo) UpdateStatusFromPending(ctx context.Context, id int64, to int8) (bool, error) {
	if f.updateStatusFn == nil {
		return true, nil
	}
	return f.updateStatusFn(ctx, id, to)
}

func (f *fakeRequestRepo) ListReceivedPending(ctx context.Context, userUUID string) ([]*model.FriendRequest, error) {
	if f.listReceivedFn == nil {
		return nil, nil
	}
	return f.listReceivedFn(ctx, userUUID)
}

func (f *fakeRequestRepo) ListAllForUser(ctx context.Context, userUUID string) ([]*model.FriendRequest, error) {
	if f.listAllForUserFn == nil {
		return nil, nil
	}
	return f.listAllForUserFn(ctx, userUUID)
}

type fakeMessageRepo struct {
	createFn        func(context.Context, *model.Message) error
	findBetweenFn   func(context.Context, string, string) ([]*model.Message, error)
	markReadFn      func(context.Context, string, string, time.Time) (int64, error)
	countUnreadFn   func(context.Context, string, string) (int64, error)
	findInvolvingFn func(context.Context, string) ([]*model.Message, error)
}

func (f *fakeMessageRepo) Create(ctx context.Context, msg *model.Message) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, msg)
}

func (f *fakeMessageRepo) FindBetween(ctx context.Context, a, b string) ([]*model.Message, error) {
	if f.findBetweenFn == nil {
		return nil, nil
	}
	return f.findBetweenFn(ctx, a, b)
}

func (f *fakeMessageRepo) MarkRead(ctx context.Context, senderUUID, receiverUUID string, readAt time.Time) (int64, error) {
	if f.markReadFn == nil {
		return 0, nil
	}
	return f.markReadFn(ctx, senderUUID, receiverUUID, readAt)
}

func (f *fakeMessageRepo) CountUnread(ctx context.Context, senderUUID, receiverUUID string) (int64, error) {
	if f.countUnreadFn == nil {
		return 0, nil
	}
	return f.countUnreadFn(ctx, senderUUID, receiverUUID)
}

func (f *fakeMessageRepo) FindInvolving(ctx context.Context, userUUID string) ([]*model.Message, error) {
	if f.findInvolvingFn == nil {
		return nil, nil
	}
	return f.findInvolvingFn(ctx, userUUID)
}

type fakePostRepo struct {
	createFn  func(context.Context, *model.Post) error
	getByIDFn func(context.Context, int64) (*model.Post, error)
	listAllFn func(context.Context) ([]*model.Post, error)
	updateFn  func(context.Context, *model.Post) error
	deleteFn  func(context.Context, int64) error
}

func (f *fakePostRepo) Create(ctx context.Context, post *model.Post) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, post)
}

func (f *fakePostRepo) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	if f.getByIDFn == nil {
		return nil, repository.ErrRecordNotFound
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakePostRepo) ListAll(ctx context.Context) ([]*model.Post, error) {
	if f.listAllFn == nil {
		return nil, nil
	}
	return f.listAllFn(ctx)
}

func (f *fakePostRepo) Update(ctx context.Context, post *model.Post) error {
	if f.updateFn == nil {
		return nil
	}
	return f.updateFn(ctx, post)
}

func (f *fakePostRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, id)
}

// ==================== 外部依赖 fakes ====================

type fakeIdentityProvider struct {
	authURLFn func(string) string
	verifyFn  func(context.Context, string) (*oauth.Profile, error)
}

func (f *fakeIdentityProvider) AuthURL(state string) string {
	if f.authURLFn == nil {
		return "https://accounts.example.com/auth?state=" + state
	}
	return f.authURLFn(state)
}

func (f *fakeIdentityProvider) VerifyAuthorizationCode(ctx context.Context, code string) (*oauth.Profile, error) {
	if f.verifyFn == nil {
		return &oauth.Profile{GoogleID: "g-1", Name: "tester", Email: "tester@example.com"}, nil
	}
	return f.verifyFn(ctx, code)
}

type fakeObjectStore struct {
	storeFn  func(context.Context, io.Reader, int64, minio.StoreOptions) (string, error)
	deleteFn func(context.Context, string) error
	deleted  []string
}

func (f *fakeObjectStore) Store(ctx context.Context, reader io.Reader, size int64, opts minio.StoreOptions) (string, error) {
	if f.storeFn == nil {
		return "http://store.local/bucket/posts/obj", nil
	}
	return f.storeFn(ctx, reader, size, opts)
}

func (f *fakeObjectStore) Delete(ctx context.Context, publicURL string) error {
	f.deleted = append(f.deleted, publicURL)
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, publicURL)
}
