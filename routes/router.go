package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campuslink/forum/config"
	"github.com/campuslink/forum/controllers"
	"github.com/campuslink/forum/middleware"
	"github.com/campuslink/forum/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, store utils.BlobStore) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(ginzap.Ginzap(gl, time.RFC3339, true))
		r.Use(ginzap.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	categoryController := controllers.NewCategoryController(db)
	postController := controllers.NewPostController(db, store)
	commentController := controllers.NewCommentController(db)
	imageController := controllers.NewPostImageController(db)

	api := r.Group("/api/v1")

	// Reads resolve the principal when a token is present so user_vote and
	// is_saved can be personalized; anonymous reads still succeed.
	read := api.Group("")
	read.Use(middleware.AuthOptional())
	read.GET("/categories", categoryController.ListCategories)
	read.GET("/categories/:id", categoryController.GetCategory)
	read.GET("/posts", postController.ListPosts)
	read.GET("/posts/:id", postController.GetPost)
	read.GET("/comments", commentController.ListComments)
	read.GET("/comments/:id", commentController.GetComment)
	read.GET("/post-images", imageController.ListPostImages)
	read.GET("/post-images/:id", imageController.GetPostImage)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/categories", categoryController.CreateCategory)
	protected.PUT("/categories/:id", categoryController.UpdateCategory)
	protected.PATCH("/categories/:id", categoryController.UpdateCategory)
	protected.DELETE("/categories/:id", categoryController.DeleteCategory)

	// "/posts/saved" has to be registered before the parametric routes so
	// gin does not treat "saved" as an id.
	protected.GET("/posts/saved", postController.ListSavedPosts)
	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/posts/:id", postController.UpdatePost)
	protected.PATCH("/posts/:id", postController.UpdatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/vote", postController.VotePost)
	protected.POST("/posts/:id/save", postController.SavePost)

	protected.POST("/comments", commentController.CreateComment)
	protected.PUT("/comments/:id", commentController.UpdateComment)
	protected.PATCH("/comments/:id", commentController.UpdateComment)
	protected.DELETE("/comments/:id", commentController.DeleteComment)
	protected.POST("/comments/:id/vote", commentController.VoteComment)

	protected.DELETE("/post-images/:id", imageController.DeletePostImage)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
