package main

import (
	"log"
	"log/slog"
	"os"

	_ "todoapi/docs"
	"todoapi/internal/config"
	"todoapi/internal/server"
)

// @title           Todo List API
// @version         1.0
// @description     Authenticated CRUD API for todos, subtasks and tags.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	s, err := server.Init(cfg, logger)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
