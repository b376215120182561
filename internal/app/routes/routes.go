package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/huskybridge/marketplace/internal/app/controllers"
	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/app/models/dto"
	"github.com/huskybridge/marketplace/internal/middleware"
)

// Controllers groups the handlers mounted under /api/v1
type Controllers struct {
	Auth    *controllers.AuthController
	Users   *controllers.UserController
	Posts   *controllers.PostController
	Reports *controllers.ReportController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/refresh", ctrl.Auth.RefreshToken)
	}

	// --- Routes where the caller may be anonymous ---
	public := v1.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/posts", ctrl.Posts.ListPosts)
		public.GET("/posts/:id", ctrl.Posts.GetPost)
		public.POST("/posts/:id/reports", ctrl.Reports.ReportPost)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", ctrl.Auth.Logout)
		authenticated.GET("/auth/me", ctrl.Auth.Me)
		authenticated.PUT("/auth/me", ctrl.Users.UpdateProfile)
		authenticated.GET("/users/:id", ctrl.Users.GetUserByID)

		posts := authenticated.Group("/posts")
		{
			posts.POST("", ctrl.Posts.CreatePost)
			posts.GET("/mine", ctrl.Posts.ListMyPosts)
			posts.GET("/participating", ctrl.Posts.ListParticipatingPosts)
			posts.PUT("/:id", ctrl.Posts.UpdatePost)
			posts.DELETE("/:id", middleware.ConfirmAction(), ctrl.Posts.DeletePost)

			posts.GET("/:id/participants", ctrl.Posts.ListParticipants)
			posts.POST("/:id/participants", ctrl.Posts.Participate)
			posts.PUT("/:id/participants/:userId/select", ctrl.Posts.SelectParticipant)
			posts.DELETE("/:id/participants/:userId", ctrl.Posts.DeclineParticipant)

			posts.PUT("/:id/complete-participant", ctrl.Posts.MarkParticipantComplete)
			posts.PUT("/:id/complete-owner", ctrl.Posts.ConfirmComplete)
			posts.PUT("/:id/cancel", middleware.ConfirmAction(), ctrl.Posts.CancelCollaboration)

			posts.DELETE("/:id/participation", ctrl.Posts.RemoveFromMyPosts)
			posts.DELETE("/:id/participation/completed", middleware.ConfirmAction(), ctrl.Posts.RemoveCompletedPost)
		}

		// The services re-check the role against the stored user
		reports := authenticated.Group("/reports")
		reports.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
		{
			reports.GET("", ctrl.Reports.ListReports)
			reports.GET("/:reportId", ctrl.Reports.GetReport)
			reports.POST("/:reportId/keep", ctrl.Reports.KeepPost)
			reports.POST("/:reportId/delete", ctrl.Reports.DeletePost)
		}
	}

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})
}
