package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/projectflow/projectflow-api/internal/authz"
	"github.com/projectflow/projectflow-api/internal/config"
	"github.com/projectflow/projectflow-api/internal/constants"
	"github.com/projectflow/projectflow-api/internal/database"
	"github.com/projectflow/projectflow-api/internal/handlers"
	"github.com/projectflow/projectflow-api/internal/logging"
	"github.com/projectflow/projectflow-api/internal/middleware"
	"github.com/projectflow/projectflow-api/internal/repository"
	"github.com/projectflow/projectflow-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logging
	logging.Init(cfg.LogDir)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Wire repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	chatRepo := repository.NewChatRepository(db)
	authorizer := authz.NewRoleAuthorizer()

	authService := services.NewAuthService(userRepo)

	// Seed the bootstrap Super Admin; without one no deployment could ever
	// create projects or grant roles.
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := authService.EnsureSuperAdmin(cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("Failed to seed admin account: %v", err)
		}
	}

	projectService := services.NewProjectService(projectRepo, userRepo, authorizer)
	taskService := services.NewTaskService(taskRepo, projectRepo, authorizer)
	chatService := services.NewChatService(chatRepo, projectRepo, userRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	chatHandler := handlers.NewChatHandler(chatService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "ProjectFlow API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", middleware.OptionalUser(), authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth(), middleware.RequireUser())
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:id", middleware.RequireProjectAccess(), projectHandler.GetProject)
			projects.PUT("/:id", middleware.RequireProjectAccess(), projectHandler.UpdateProject)
			projects.DELETE("/:id", middleware.RequireProjectAccess(), projectHandler.DeleteProject)
			projects.POST("/:id/accept", middleware.RequireProjectAccess(), projectHandler.AcceptProject)
			projects.POST("/:id/decline", middleware.RequireProjectAccess(), projectHandler.DeclineProject)
			projects.POST("/:id/comments", middleware.RequireProjectAccess(), projectHandler.AddComment)

			// Task routes, nested under their project
			projects.GET("/:id/tasks", middleware.RequireProjectAccess(), taskHandler.ListTasks)
			projects.POST("/:id/tasks", middleware.RequireProjectAccess(), taskHandler.CreateTask)
			projects.PATCH("/:id/tasks/:taskId", middleware.RequireProjectAccess(), taskHandler.UpdateTask)
			projects.DELETE("/:id/tasks/:taskId", middleware.RequireProjectAccess(), taskHandler.DeleteTask)
			projects.PATCH("/:id/tasks/:taskId/status", middleware.RequireProjectAccess(), taskHandler.UpdateTaskStatus)
			projects.POST("/:id/tasks/:taskId/comments", middleware.RequireProjectAccess(), taskHandler.AddComment)
		}

		// Chat routes (protected)
		chats := api.Group("/chats")
		chats.Use(middleware.RequireAuth(), middleware.RequireUser())
		{
			chats.GET("", chatHandler.ListChats)
			chats.POST("/private", chatHandler.OpenPrivateChat)
			chats.GET("/:id", chatHandler.GetChat)
			chats.POST("/:id/messages", chatHandler.SendMessage)
		}
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
