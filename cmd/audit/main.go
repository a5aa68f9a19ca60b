package main

import (
	auditapp "github.com/corray333/backend-labs/pos/internal/app/audit"
	"github.com/corray333/backend-labs/pos/internal/config"
)

func main() {
	config.MustInit()
	auditapp.MustNewApp().Run()
}
