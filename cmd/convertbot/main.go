package main

import (
	"log"

	"go.uber.org/zap"

	"convertbot/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		log.Fatal(err)
	}

	if err := application.Run(); err != nil {
		application.Logger().Fatal("Application stopped with error", zap.Error(err))
	}
}
