package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/alihassan193/snooker-console/cmd/app"
)

// @title        Snooker club console API
// @version      1.0
// @description  Operator console for one club terminal: table board, games, canteen and cash register.
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token issued by the club backend
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
