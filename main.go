package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/yizeng/gab/gin/gorm/secret-santa/cmd/app"
)

// @title        Secret Santa API
// @version      1.0
// @description  Gift exchange events, rosters and draws.
// @BasePath     /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token issued by santa-token.
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
