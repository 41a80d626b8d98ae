package main

import (
	"github.com/manchos/sensive-blog/config"
	"github.com/manchos/sensive-blog/models"
	"github.com/manchos/sensive-blog/routes"
	"github.com/manchos/sensive-blog/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(models.AutoMigrate)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
