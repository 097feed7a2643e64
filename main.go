package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/tutorleap/qgen/cmd"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Printf("loaded environment from .env")
	}

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
