package main

import (
	"os"

	"github.com/huskybridge/marketplace/internal/pkg/logger"
)

// @title HuskyBridge Marketplace API
// @version 1.0
// @description Campus marketplace for requests and offers between students

// @contact.name HuskyBridge Support
// @contact.email support@huskybridge.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
