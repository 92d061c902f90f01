package service

import (
	"context"
	"errors"

	"SocialServer/consts"
	"SocialServer/internal/dto"
	"SocialServer/internal/repository"
	"SocialServer/model"
	"SocialServer/pkg/logger"
	"SocialServer/pkg/oauth"
	"SocialServer/pkg/util"
)

// IdentityProvider 身份提供方抽象，生产实现是 oauth.GoogleClient
type IdentityProvider interface {
	AuthURL(state string) string
	VerifyAuthorizationCode(ctx context.Context, code string) (*oauth.Profile, error)
}

// authServiceImpl 认证服务实现。
// provider 为 nil 表示 Google 登录在启动时因凭据缺失被禁用，
// 相关入口统一返回 CodeServiceUnavailable，进程其余功能不受影响。
type authServiceImpl struct {
	provider IdentityProvider
	userRepo repository.IUserRepository
}

// NewAuthService 创建认证服务
func NewAuthService(provider IdentityProvider, userRepo repository.IUserRepository) IAuthService {
	return &authServiceImpl{
		provider: provider,
		userRepo: userRepo,
	}
}

func (s *authServiceImpl) Enabled() bool {
	return s.provider != nil
}

func (s *authServiceImpl) AuthCodeURL(state string) (string, error) {
	if s.provider == nil {
		return "", NewBizError(consts.CodeServiceUnavailable)
	}
	return s.provider.AuthURL(state), nil
}

// LoginWithGoogle 用授权码完成登录。
// 流程：换取 Google 资料 -> 匹配或创建本地用户 -> 签发 JWT。
func (s *authServiceImpl) LoginWithGoogle(ctx context.Context, code string) (*dto.LoginResult, error) {
	if s.provider == nil {
		return nil, NewBizError(consts.CodeServiceUnavailable)
	}
	if code == "" {
		return nil, NewBizError(consts.CodeParamError)
	}

	profile, err := s.provider.VerifyAuthorizationCode(ctx, code)
	if err != nil {
		return nil, NewBizError(consts.CodeUpstreamError)
	}

	user, err := s.getOrCreateUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	token, err := util.GenerateToken(user.Uuid)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "用户登录成功",
		logger.String("user_uuid", user.Uuid),
		logger.String("email", user.Email),
	)

	return &dto.LoginResult{
		Token: token,
		User:  dto.NewUserBrief(user),
	}, nil
}

// getOrCreateUser 按优先级匹配本地用户：
// google_id 命中 -> 直接返回；
// 邮箱命中 -> 回填 Google 绑定（头像仅在缺失时补充）；
// 都未命中 -> 创建新用户。
func (s *authServiceImpl) getOrCreateUser(ctx context.Context, profile *oauth.Profile) (*model.UserInfo, error) {
	user, err := s.userRepo.GetByGoogleID(ctx, profile.GoogleID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrRecordNotFound) {
		return nil, err
	}

	user, err = s.userRepo.GetByEmail(ctx, profile.Email)
	if err == nil {
		if err := s.userRepo.LinkGoogleAccount(ctx, user.Uuid, profile.GoogleID, profile.Avatar); err != nil {
			return nil, err
		}
		user.GoogleId = profile.GoogleID
		if user.Avatar == "" {
			user.Avatar = profile.Avatar
		}
		return user, nil
	}
	if !errors.Is(err, repository.ErrRecordNotFound) {
		return nil, err
	}

	newUser := &model.UserInfo{
		Uuid:     util.NewUUID(),
		Name:     profile.Name,
		Email:    profile.Email,
		GoogleId: profile.GoogleID,
		Avatar:   profile.Avatar,
	}
	err = s.userRepo.Create(ctx, newUser)
	if err == nil {
		return newUser, nil
	}

	// 并发回调撞上唯一键：另一条请求已经建好了同一用户，重查即可
	if errors.Is(err, repository.ErrDuplicateKey) {
		if user, retryErr := s.userRepo.GetByGoogleID(ctx, profile.GoogleID); retryErr == nil {
			return user, nil
		}
		if user, retryErr := s.userRepo.GetByEmail(ctx, profile.Email); retryErr == nil {
			return user, nil
		}
	}
	return nil, err
}

func (s *authServiceImpl) GetProfile(ctx context.Context, userUUID string) (*dto.UserBrief, error) {
	user, err := s.userRepo.GetByUUID(ctx, userUUID)
	if err != nil {
		return nil, wrapRepoError(err, consts.CodeUserNotFound)
	}
	return dto.NewUserBrief(user), nil
}

// Logout 登出。持久化离线状态；用户不存在时静默成功（登出天然幂等）。
func (s *authServiceImpl) Logout(ctx context.Context, userUUID string) error {
	err := s.userRepo.UpdatePresence(ctx, userUUID, false)
	if err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
		return err
	}
	return nil
}
