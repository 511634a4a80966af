package main

import (
	"github.com/sirupsen/logrus"

	_ "labelhub/docs"
	"labelhub/internal/config"
	"labelhub/internal/server"
)

// @title           Labelhub API
// @version         1.0
// @description     Annotation-management service: editors define labeling
// @description     tasks over documents, distribute assignments to
// @description     annotators, and collect span/relation annotations.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		logrus.Fatalf("server initialization failed: %v", err)
	}

	s.Run()
}
