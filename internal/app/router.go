package app

import (
	"faaqs_backend/docs"
	"faaqs_backend/internal/middleware"
	"faaqs_backend/internal/model"
	"time"

	"faaqs_backend/pkg/monitoring"
	"faaqs_backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// 登录、注册、重置密码单独限流
const (
	authRateLimit  = 20
	authRateWindow = time.Minute
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 社区模块
	a.registerCommunityRoutes(router, c)

	// 3. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(a.services.auth))
	{
		a.registerStudentRoutes(authGroup, c)
	}

	// 4. 管理员相关接口
	a.registerAdminRoutes(router, c)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		auth := public.Group("/auth")
		auth.Use(security.RateLimiter("auth", authRateLimit, authRateWindow))
		{
			auth.POST("/signup", c.auth.Signup)
			auth.POST("/login", c.auth.Login)
			auth.POST("/sso", c.auth.SSO)
			auth.POST("/password-reset", c.auth.RequestPasswordReset)
			auth.POST("/password-reset/confirm", c.auth.ConfirmPasswordReset)
		}

		public.GET("/programmes", c.programme.ListProgrammes)
		public.GET("/programmes/:slug", c.programme.GetProgramme)
		public.GET("/programmes/:slug/quizzes", c.programme.ListProgrammeQuizzes)
	}
}

func (a *App) registerCommunityRoutes(router *gin.Engine, c *controllers) {
	community := router.Group("/api/community")
	{
		// 浏览类：可选认证，游客只能看到已通过的帖子
		community.GET("/posts", middleware.OptionalAuth(a.services.auth), c.community.ListPosts)
		community.GET("/posts/:id", middleware.OptionalAuth(a.services.auth), c.community.GetPost)

		// 交互类：强制认证
		authorized := community.Group("/")
		authorized.Use(middleware.AuthMiddleware(a.services.auth))
		{
			authorized.POST("/posts", c.community.CreatePost)
			authorized.POST("/posts/:id/like", c.community.LikePost)
			authorized.POST("/posts/:id/unlike", c.community.UnlikePost)
			authorized.POST("/posts/:id/toggle-like", c.community.ToggleLike)
			authorized.POST("/posts/:id/replies", c.community.Reply)
			authorized.POST("/posts/:id/replies/:replyId/toggle-like", c.community.ToggleReplyLike)
			authorized.POST("/posts/:id/reports", c.community.Report)
		}
	}
}

func (a *App) registerStudentRoutes(group *gin.RouterGroup, c *controllers) {
	group.POST("/auth/logout", c.auth.Logout)

	group.GET("/profile", c.user.GetProfile)
	group.PUT("/profile", c.user.UpdateProfile)

	group.GET("/quizzes/:id", c.quiz.GetQuiz)
	group.POST("/quizzes/:id/sessions", c.session.StartSession)

	sessions := group.Group("/sessions/:id")
	{
		sessions.GET("", c.session.GetSession)
		sessions.PUT("/answers", c.session.SelectAnswer)
		sessions.POST("/next", c.session.Next)
		sessions.POST("/previous", c.session.Previous)
		sessions.POST("/submit", c.session.Submit)
		sessions.DELETE("", c.session.Abandon)
		sessions.GET("/ws", c.session.Stream)
	}

	group.GET("/progress", c.progress.ListAttempts)
	group.GET("/dashboard", c.progress.Dashboard)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(a.services.auth), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/quizzes", c.quiz.AdminListQuizzes)
		admin.GET("/quizzes/:id", c.quiz.AdminGetQuiz)
		admin.POST("/quizzes", c.quiz.CreateQuiz)
		admin.PUT("/quizzes/:id", c.quiz.UpdateQuiz)
		admin.DELETE("/quizzes/:id", c.quiz.DeleteQuiz)

		admin.GET("/users", c.user.ListUsers)
		admin.PATCH("/users/:uid/role", c.user.UpdateRole)

		admin.GET("/posts", c.community.AdminListPosts)
		admin.POST("/posts/:id/approve", c.community.ApprovePost)
		admin.POST("/posts/:id/reject", c.community.RejectPost)
		admin.DELETE("/posts/:id", c.community.DeletePost)

		admin.POST("/files", c.file.UploadFile)
		admin.GET("/files", c.file.ListFiles)
	}
}
