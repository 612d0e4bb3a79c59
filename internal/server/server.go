package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todoapi/internal/auth"
	"todoapi/internal/config"
	"todoapi/internal/handler"
	"todoapi/internal/middleware"
	"todoapi/internal/repository"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

func Init(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	// Setup GORM. TranslateError maps driver-level unique violations to
	// gorm.ErrDuplicatedKey, which repositories turn into Conflict.
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("❌ failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	log.Println("✅ Connected to database")

	if err := runMigrations(sqlDB); err != nil {
		return nil, fmt.Errorf("❌ failed to run migrations: %w", err)
	}
	log.Println("✅ Migrations up to date")

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	tagRepo := repository.NewTagRepository(db)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userRepo, issuer, cfg.TokenTTL, cfg.Production())
	todoHandler := handler.NewTodoHandler(todoRepo)
	subtaskHandler := handler.NewSubtaskHandler(subtaskRepo, todoRepo)
	tagHandler := handler.NewTagHandler(tagRepo, todoRepo)

	// Setup Gin
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		gin.Recovery(),
		middleware.Timeout(cfg.RequestTimeout),
	)

	// Public routes
	r.GET("/", middleware.OptionalAuth(issuer), index)
	r.GET("/health", health)
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.POST("/auth/logout", authHandler.Logout)

	// Protected routes - require a valid session token
	authorized := r.Group("/")
	authorized.Use(middleware.RequireAuth(issuer))
	{
		authorized.GET("/auth/me", authHandler.Me)

		// Todo routes
		authorized.POST("/todos", todoHandler.Create)
		authorized.GET("/todos", todoHandler.GetAll)
		authorized.GET("/todos/:id", todoHandler.GetByID)
		authorized.PUT("/todos/:id", todoHandler.Update)
		authorized.DELETE("/todos/:id", todoHandler.Delete)
		authorized.GET("/todos/status/:status", todoHandler.GetByStatus)
		authorized.GET("/todos/priority/:priority", todoHandler.GetByPriority)
		authorized.GET("/todos/overdue", todoHandler.GetOverdue)
		authorized.GET("/todos/upcoming", todoHandler.GetUpcoming)
		authorized.GET("/todos/:id/with-subtasks", todoHandler.GetWithSubtasks)

		// Subtask routes
		authorized.POST("/subtasks", subtaskHandler.Create)
		authorized.GET("/subtasks/:id", subtaskHandler.GetByID)
		authorized.PUT("/subtasks/:id", subtaskHandler.Update)
		authorized.DELETE("/subtasks/:id", subtaskHandler.Delete)
		authorized.GET("/todos/:id/subtasks", subtaskHandler.GetByTodo)
		authorized.POST("/todos/:id/subtasks", subtaskHandler.CreateForTodo)
		authorized.GET("/todos/:id/subtasks/status/:status", subtaskHandler.GetByStatus)
		authorized.GET("/todos/:id/subtasks/overdue", subtaskHandler.GetOverdue)
		authorized.PUT("/todos/:id/subtasks/reorder", subtaskHandler.Reorder)

		// Tag routes
		authorized.POST("/tags", tagHandler.Create)
		authorized.GET("/tags", tagHandler.GetAll)
		authorized.GET("/tags/:id", tagHandler.GetByID)
		authorized.PUT("/tags/:id", tagHandler.Update)
		authorized.DELETE("/tags/:id", tagHandler.Delete)
		authorized.GET("/tags/:id/todos", tagHandler.GetTodosByTag)
		authorized.GET("/todos/:id/tags", tagHandler.GetTodoTags)
		authorized.POST("/todos/:id/tags", tagHandler.AddTagToTodo)
		authorized.DELETE("/todos/:id/tags/:tagId", tagHandler.RemoveTagFromTodo)
	}

	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
	}, nil
}

func index(c *gin.Context) {
	body := gin.H{
		"message": "Welcome to Todo List API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"auth":   "/auth",
			"todos":  "/todos",
			"tags":   "/tags",
			"health": "/health",
			"docs":   "/docs/index.html",
		},
	}
	if username, ok := c.Get(middleware.UsernameKey); ok {
		body["user"] = username
	}
	c.JSON(http.StatusOK, body)
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	log.Println("✅ Server exited properly")
}
