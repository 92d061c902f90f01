package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SocialServer/config"
	"SocialServer/internal/gateway"
	"SocialServer/internal/middleware"
	"SocialServer/internal/repository"
	"SocialServer/internal/router"
	v1 "SocialServer/internal/router/v1"
	"SocialServer/internal/service"
	"SocialServer/pkg/async"
	"SocialServer/pkg/logger"
	pkgminio "SocialServer/pkg/minio"
	pkgmysql "SocialServer/pkg/mysql"
	"SocialServer/pkg/oauth"
	pkgredis "SocialServer/pkg/redis"
	"SocialServer/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// 入口：初始化基础设施 -> 组装依赖 -> 启动 HTTP 服务 -> 等待退出信号。
// 初始化顺序有依赖关系：logger 最先（其余组件都要打日志），
// MySQL 是硬依赖（失败直接退出），Redis/MinIO/OAuth 是可降级依赖。
func main() {
	// .env 不存在不算错误（生产环境直接用环境变量）
	_ = godotenv.Load()

	// 1. 日志
	zapLogger, err := logger.Build(config.DefaultLoggerConfig())
	if err != nil {
		panic(err)
	}
	logger.ReplaceGlobal(zapLogger)
	defer func() {
		_ = zapLogger.Sync()
	}()

	ctx := context.Background()

	// 2. 雪花 ID 与 JWT
	if err := util.InitSnowflake(); err != nil {
		logger.Fatal(ctx, "雪花节点初始化失败", logger.ErrorField("error", err))
	}
	util.InitJWT(config.DefaultJWTConfig())

	// 3. MySQL（硬依赖）
	db, err := pkgmysql.Build(config.DefaultMySQLConfig())
	if err != nil {
		logger.Fatal(ctx, "MySQL 初始化失败", logger.ErrorField("error", err))
	}
	pkgmysql.ReplaceGlobal(db)

	// 4. Redis（可降级：失败后走纯 MySQL + 本地限流兜底）
	redisClient, err := pkgredis.Build(config.DefaultRedisConfig())
	if err != nil {
		logger.Warn(ctx, "Redis 不可用，缓存与分布式限流降级",
			logger.ErrorField("error", err),
		)
		redisClient = nil
	}
	pkgredis.ReplaceGlobal(redisClient)

	// 5. MinIO（可降级：失败后带媒体的发布被拒绝，纯文本功能不受影响）
	minioClient, err := pkgminio.Build(config.DefaultMinIOConfig())
	if err != nil {
		logger.Warn(ctx, "MinIO 不可用，媒体上传功能禁用",
			logger.ErrorField("error", err),
		)
		minioClient = nil
	}
	pkgminio.ReplaceGlobal(minioClient)

	// 6. 异步协程池（缓存维护等旁路任务）
	if err := async.Init(config.DefaultAsyncConfig()); err != nil {
		logger.Fatal(ctx, "协程池初始化失败", logger.ErrorField("error", err))
	}
	async.SetContextPropagator(func(parent context.Context) context.Context {
		traceId, _ := parent.Value("trace_id").(string)
		return util.WithTraceID(context.Background(), traceId)
	})

	// 7. Google OAuth（快速失败：凭据缺失或占位符时禁用登录功能，进程照常启动）
	var provider service.IdentityProvider
	googleClient, err := oauth.NewGoogleClient(config.DefaultGoogleOAuthConfig())
	switch {
	case err == nil:
		provider = googleClient
	case errors.Is(err, config.ErrGoogleOAuthNotConfigured):
		logger.Warn(ctx, "Google OAuth 未配置，登录功能禁用")
	default:
		logger.Fatal(ctx, "Google OAuth 初始化失败", logger.ErrorField("error", err))
	}

	// 8. 组装 Repository / Service / Gateway
	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db, redisClient)
	requestRepo := repository.NewRequestRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	postRepo := repository.NewPostRepository(db)

	authSvc := service.NewAuthService(provider, userRepo)
	friendSvc := service.NewFriendService(userRepo, friendRepo, requestRepo)
	chatSvc := service.NewChatService(userRepo, friendRepo, messageRepo)

	var store service.ObjectStore
	if minioClient != nil {
		store = minioClient
	}
	postSvc := service.NewPostService(userRepo, postRepo, store)

	registry := gateway.NewChannelRegistry()
	gw := gateway.NewGateway(registry, friendSvc, chatSvc, userRepo)

	// 9. 路由
	serverCfg := config.DefaultServerConfig()
	limiter := middleware.NewRateLimiter(redisClient, 20, 40)

	gin.SetMode(gin.ReleaseMode)
	engine := router.InitRouter(router.Handlers{
		Auth:   v1.NewAuthHandler(authSvc, serverCfg.FrontendURL),
		Friend: v1.NewFriendHandler(friendSvc),
		Chat:   v1.NewChatHandler(chatSvc),
		Post:   v1.NewPostHandler(postSvc),
		WS:     gateway.NewWSHandler(gw),
	}, limiter, serverCfg.FrontendURL)

	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: serverCfg.ReadHeaderTimeout,
		IdleTimeout:       serverCfg.IdleTimeout,
		MaxHeaderBytes:    serverCfg.MaxHeaderBytes,
	}

	go func() {
		logger.Info(ctx, "服务启动",
			logger.String("addr", serverCfg.Addr),
			logger.Bool("oauth_enabled", provider != nil),
			logger.Bool("redis_enabled", redisClient != nil),
			logger.Bool("minio_enabled", minioClient != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "HTTP 服务异常退出", logger.ErrorField("error", err))
		}
	}()

	// 10. 等待退出信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "收到退出信号，开始优雅关闭")

	// 先断 WebSocket（触发各连接的下线清理），再停 HTTP，最后释放资源
	gw.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn(ctx, "HTTP 服务关闭超时", logger.ErrorField("error", err))
	}

	if err := async.Release(); err != nil {
		logger.Warn(ctx, "协程池释放超时", logger.ErrorField("error", err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info(ctx, "服务已退出")
}
