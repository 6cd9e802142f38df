package main

import (
	"log"

	"dentai/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatalf("dentai: %v", err)
	}
}
