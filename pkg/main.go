package main

import (
	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/gommon/log"
)

func main() {
	server, cleanup, err := Setup()
	if err != nil {
		log.Fatalf("main start failed %v", err)
		return
	}
	defer cleanup()

	if err := server.Run(); err != nil {
		log.Fatalf("server stopped %v", err)
	}
}
