package main

import (
	"github.com/corray333/backend-labs/pos/internal/app"
	"github.com/corray333/backend-labs/pos/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
