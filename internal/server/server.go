package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"labelhub/internal/cache"
	"labelhub/internal/config"
	"labelhub/internal/handler"
	"labelhub/internal/mailer"
	"labelhub/internal/middleware"
	"labelhub/internal/repository"
	"labelhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
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

func Init(cfg *config.Config) (*Server, error) {
	// Setup GORM
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	logrus.Info("connected to database")

	// Setup Gin
	r := gin.Default()

	// Optional document cache
	var docCache *cache.DocumentCache
	if cfg.RedisAddr != "" {
		docCache = cache.NewDocumentCache(cfg.RedisAddr)
		logrus.WithField("addr", cfg.RedisAddr).Info("document cache enabled")
	}

	// Invitation mail
	var mail mailer.Mailer
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPassword)
	} else {
		mail = mailer.NewLog()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	shareRepo := repository.NewProjectShareRepository(db)
	labelsetRepo := repository.NewLabelsetRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	annotationRepo := repository.NewAnnotationRepository(db)
	relationRepo := repository.NewRelationRepository(db)

	// Initialize services
	sequencer := service.NewSequencer(assignmentRepo)
	replicator := service.NewReplicator(db)
	reassigner := service.NewReassigner(userRepo, assignmentRepo, mail)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userRepo)
	projectHandler := handler.NewProjectHandler(projectRepo, userRepo, shareRepo)
	labelsetHandler := handler.NewLabelsetHandler(labelsetRepo, projectRepo, shareRepo)
	documentHandler := handler.NewDocumentHandler(documentRepo, shareRepo, docCache)
	taskHandler := handler.NewTaskHandler(taskRepo, shareRepo, replicator, reassigner)
	assignmentHandler := handler.NewAssignmentHandler(assignmentRepo, taskRepo, shareRepo, sequencer)
	annotationHandler := handler.NewAnnotationHandler(annotationRepo, relationRepo, assignmentRepo)

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		// Project routes
		authorized.POST("/projects", projectHandler.Create)
		authorized.GET("/projects", projectHandler.GetAll)
		authorized.GET("/projects/:id", projectHandler.GetByID)
		authorized.POST("/projects/:id/share", projectHandler.Share)

		// Labelset routes
		authorized.POST("/labelsets", labelsetHandler.Create)
		authorized.GET("/labelsets/:id", labelsetHandler.GetByID)
		authorized.GET("/projects/:id/labelsets", labelsetHandler.GetByProjectID)

		// Document routes
		authorized.POST("/documents", documentHandler.Create)
		authorized.GET("/documents/:id", documentHandler.GetByID)
		authorized.GET("/projects/:id/documents", documentHandler.GetByProjectID)

		// Task routes
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.GET("/projects/:id/tasks", taskHandler.GetByProjectID)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.POST("/tasks/:id/replicate", taskHandler.Replicate)
		authorized.POST("/tasks/merge", taskHandler.Merge)
		authorized.PUT("/tasks/:id/assignees", taskHandler.UpdateAssignees)

		// Assignment routes
		authorized.POST("/tasks/:id/assignments", assignmentHandler.Create)
		authorized.GET("/tasks/:id/assignments", assignmentHandler.GetByTaskID)
		authorized.GET("/tasks/:id/next", assignmentHandler.NextForTask)
		authorized.GET("/tasks/:id/progress", assignmentHandler.Progress)
		authorized.GET("/assignments/next", assignmentHandler.NextForUser)
		authorized.POST("/assignments/:id/complete", assignmentHandler.Complete)

		// Annotation routes
		authorized.POST("/assignments/:id/annotations", annotationHandler.Create)
		authorized.GET("/assignments/:id/annotations", annotationHandler.GetByAssignmentID)
		authorized.GET("/assignments/:id/relations", annotationHandler.GetRelationsByAssignmentID)
		authorized.POST("/relations", annotationHandler.CreateRelation)
	}

	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
	}, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		logrus.Infof("server running on port %s", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("failed to listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("server forced to shutdown: %s", err)
	}

	logrus.Info("server exited properly")
}
