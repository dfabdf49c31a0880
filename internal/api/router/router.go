package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"guidance-planner/config"
	"guidance-planner/internal/api/handler"
	"guidance-planner/internal/api/middleware"
	"guidance-planner/pkg/jwt"
	"guidance-planner/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitKB * 1024))

	// Redis 不可用时两者保持 nil 接口，中间件降级放行
	var (
		blacklist middleware.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "ok", "database": "ok", "redis": "disabled"}
		code := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["status"], status["database"] = "degraded", "unreachable"
			code = http.StatusServiceUnavailable
		}
		if rdb != nil {
			status["redis"] = "ok"
			if err := rdb.Ping(ctx); err != nil {
				status["redis"] = "unreachable"
			}
		}
		c.JSON(code, status)
	})

	heavy := middleware.RateLimit(limiter, cfg.Server.RateLimit, cfg.Server.RateWindow)

	// ── API v1（全部需要认证，仅管理员与辅导老师） ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, blacklist))
	v1.Use(middleware.RoleAuth("admin", "counselor"))
	{
		// 学生维度
		students := v1.Group("/students/:id")
		{
			students.POST("/study-slots", h.StudySlot.CreateStudySlot)
			students.GET("/study-slots", h.StudySlot.ListStudySlots)
			students.GET("/study-slots/weekly-total", h.StudySlot.GetWeeklyTotal)

			students.POST("/auto-fill", heavy, h.AutoFill.RunAutoFill)
			students.GET("/study-plan", h.AutoFill.ListStudyPlan)

			students.GET("/progress", h.Progress.ListProgress)
			students.POST("/progress/assign", h.Progress.AssignCourse)

			students.GET("/export/weekly-plan.xlsx", heavy, h.Export.ExportWeeklyPlanXLSX)
			students.GET("/export/weekly-plan.ics", heavy, h.Export.ExportWeeklyPlanICS)
		}

		// 时间块
		slots := v1.Group("/study-slots")
		{
			slots.GET("/:id", h.StudySlot.GetStudySlot)
			slots.PUT("/:id", h.StudySlot.UpdateStudySlot)
			slots.POST("/:id/move", h.StudySlot.MoveStudySlot)
			slots.POST("/:id/resize", h.StudySlot.ResizeStudySlot)
			slots.DELETE("/:id", h.StudySlot.DeleteStudySlot)
		}

		v1.POST("/progress/:id/reset", h.Progress.ResetProgress)

		// 课程目录
		courses := v1.Group("/courses")
		{
			courses.GET("", h.Course.ListCourses)
			courses.GET("/categories", h.Course.ListCategories)
			courses.GET("/:id", h.Course.GetCourse)
		}
	}

	return r
}
