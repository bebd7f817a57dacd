package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/redmac135/banshee-training/config"
	"github.com/redmac135/banshee-training/internal/api/handler"
	"github.com/redmac135/banshee-training/internal/api/middleware"
	"github.com/redmac135/banshee-training/pkg/jwt"
	"github.com/redmac135/banshee-training/pkg/metrics"
	"github.com/redmac135/banshee-training/pkg/redis"
)

// maxJSONBody 非上传接口的请求体上限
const maxJSONBody = 1 << 20

// HealthCheck 健康检查探针（数据库 Ping）
type HealthCheck func(ctx context.Context) error

// Setup 初始化并返回 Gin 路由引擎
// rdb、m、health 均可为 nil（未配置 Redis / 未启用指标 / 不检查依赖）
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, m *metrics.Metrics, health HealthCheck, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	var (
		blacklist middleware.TokenChecker
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger, "/health", cfg.Metrics.Path))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health(ctx); err != nil {
				logger.Warn("健康检查失败", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m != nil && cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	jsonLimit := middleware.BodyLimit(maxJSONBody)
	training := middleware.RequireTraining()
	admin := middleware.RequireAdmin()

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth", jsonLimit)
		{
			auth.POST("/login", middleware.RateLimit(limiter, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow), h.Auth.Login)
			auth.POST("/signup", middleware.RateLimit(limiter, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow), h.Auth.Signup)
			auth.POST("/signup/officer", middleware.RateLimit(limiter, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow), h.Auth.OfficerSignup)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", jsonLimit, h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", jsonLimit, h.Auth.ChangePassword)

			// 首页
			authorized.GET("/dashboard", h.Dashboard.GetDashboard)
			authorized.GET("/dashboard/calendar.ics", h.Dashboard.GetCalendar)

			// 级别目录
			authorized.GET("/levels", h.Level.ListLevels)

			// 人员模块
			seniors := authorized.Group("/seniors", jsonLimit)
			{
				seniors.GET("", h.Senior.ListSeniors)
				seniors.GET("/instructors", h.Senior.ListInstructors)
				seniors.GET("/:id", h.Senior.GetSenior)
				seniors.PUT("/:id", h.Senior.UpdateSenior) // 本人或训练主管（Service 层鉴权）
				seniors.PUT("/:id/permission", admin, h.Senior.SetPermission)
				seniors.PUT("/:id/assignment-exclusion", training, h.Senior.SetAssignmentExclusion)
			}

			// 训练设置
			settings := authorized.Group("/settings", jsonLimit)
			{
				settings.GET("/training", h.Setting.GetTrainingSetting)
				settings.PUT("/training", training, h.Setting.UpdateTrainingSetting)
			}

			// 注册白名单
			authorizedEmails := authorized.Group("/authorized-emails", jsonLimit, training)
			{
				authorizedEmails.GET("", h.Setting.ListAuthorizedEmails)
				authorizedEmails.POST("", h.Setting.AddAuthorizedEmails)
				authorizedEmails.DELETE("/:id", h.Setting.DeleteAuthorizedEmail)
			}

			// 邮件记录
			authorized.GET("/emails", admin, h.Setting.ListEmails)

			// 训练夜模块
			nights := authorized.Group("/nights", jsonLimit)
			{
				nights.GET("", h.Night.ListNights)
				nights.POST("", training, h.Night.CreateNight)
				nights.DELETE("", training, h.Night.DeleteNightByDate)
				nights.GET("/:id", h.Night.GetNight)
				nights.DELETE("/:id", training, h.Night.DeleteNight)
				nights.GET("/:id/schedule", h.Night.GetSchedule)
				nights.GET("/:id/excused", training, h.Night.GetExcused)
				nights.PUT("/:id/excused", training, h.Night.SetExcused)
				nights.GET("/:id/assignments", training, h.Assignment.GetNightAssignments)
				nights.PUT("/:id/assignments", training, h.Assignment.AssignNight)
				nights.POST("/:id/teaches", training, h.Teach.SaveTeach)
			}

			// 课程模块
			teaches := authorized.Group("/teaches")
			{
				teaches.GET("/:teach_id", h.Teach.GetTeach)
				teaches.GET("/:teach_id/form", training, h.Teach.GetTeachForm)
				teaches.GET("/:teach_id/assignments", training, h.Assignment.GetTeachAssignments)
				teaches.PUT("/:teach_id/assignments", jsonLimit, training, h.Assignment.AssignTeach)
				teaches.PUT("/:teach_id/plan", jsonLimit, h.Teach.SubmitPlan) // 已分配人员或训练主管（Service 层鉴权）
				teaches.POST("/:teach_id/plan/file", middleware.BodyLimit(cfg.Storage.MaxSizeMB<<20+maxJSONBody), h.Teach.UploadPlan)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/month", training, h.Export.ExportMonth)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
