package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"SocialServer/config"
	"SocialServer/pkg/logger"

	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const userInfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// ErrExchangeFailed 表示授权码交换或资料拉取失败（上游错误，调用方可在 HTTP 层重试）。
var ErrExchangeFailed = errors.New("google oauth exchange failed")

// Profile 授权码交换得到的用户资料。
type Profile struct {
	GoogleID string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Avatar   string `json:"picture"`
}

// GoogleClient Google OAuth 客户端。
// 凭据在构造时完成校验（快速失败），运行期只做交换；
// 对 Google 的出网调用包在熔断器里，上游持续故障时直接拒绝，避免连接堆积。
type GoogleClient struct {
	oauthCfg *oauth2.Config
	breaker  *gobreaker.CircuitBreaker
	timeout  time.Duration
}

// NewGoogleClient 创建客户端。配置非法时返回 config.ErrGoogleOAuthNotConfigured。
func NewGoogleClient(cfg config.GoogleOAuthConfig) (*GoogleClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "google-oauth",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "OAuth 熔断器状态变化",
				logger.String("name", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})

	return &GoogleClient{
		oauthCfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: google.Endpoint,
		},
		breaker: breaker,
		timeout: cfg.ExchangeTimeout,
	}, nil
}

// AuthURL 生成授权页 URL。
func (g *GoogleClient) AuthURL(state string) string {
	return g.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// VerifyAuthorizationCode 用授权码交换用户资料。
// 两次出网调用（换 token、拉 userinfo）共用一个超时与熔断器。
func (g *GoogleClient) VerifyAuthorizationCode(ctx context.Context, code string) (*Profile, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resultAny, err := g.breaker.Execute(func() (interface{}, error) {
		token, err := g.oauthCfg.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("exchange code: %w", err)
		}
		return g.fetchProfile(ctx, token)
	})
	if err != nil {
		logger.Warn(ctx, "Google 授权码交换失败",
			logger.ErrorField("error", err),
		)
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	return resultAny.(*Profile), nil
}

// fetchProfile 用 access token 拉取用户资料。
func (g *GoogleClient) fetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	httpClient := g.oauthCfg.Client(ctx, token)
	resp, err := httpClient.Get(userInfoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo status %d: %s", resp.StatusCode, string(body))
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if profile.GoogleID == "" || profile.Email == "" {
		return nil, errors.New("userinfo missing id or email")
	}
	return &profile, nil
}
