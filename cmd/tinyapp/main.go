package main

import (
	"log"

	"github.com/tinyapp/tinyapp/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		log.Fatalln("Application initialization error:", err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		log.Fatalln("Application error:", err)
	}
}
