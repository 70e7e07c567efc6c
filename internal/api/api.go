// Package api provides the HTTP API server for the docflow approval engine.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	v1 "docflow/internal/api/v1"
	internalconfig "docflow/internal/config"
	"docflow/internal/db"
	"docflow/internal/db/repositories"
	"docflow/internal/logging"
)

type Server struct {
	cfg        *internalconfig.Config
	db         db.Database
	httpServer *http.Server
	repos      *repositories.Repositories
}

func New(cfg *internalconfig.Config, database db.Database) *Server {
	return &Server{
		cfg:   cfg,
		db:    database,
		repos: repositories.New(database),
	}
}

func (s *Server) Start(ctx context.Context) error {
	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", s.healthCheck)

	v1Group := router.Group("/api/v1")
	apiHandlers := v1.NewAPIHandlers(s.repos)
	apiHandlers.RegisterRoutes(v1Group)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.APIPort),
		Handler: router,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("API server error: %v", err)
		}
	}()

	<-ctx.Done()

	logging.Info("Shutting down API server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "docflow-api",
		"version": "1.0.0",
	})
}
