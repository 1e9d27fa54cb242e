package main

import (
	"github.com/campuslink/forum/config"
	"github.com/campuslink/forum/models"
	"github.com/campuslink/forum/routes"
	"github.com/campuslink/forum/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Category{},
		&models.Post{},
		&models.PostImage{},
		&models.Comment{},
		&models.Vote{},
		&models.SavedPost{},
	)

	store := utils.NewLocalBlobStore(cfg)
	r := routes.SetupRouter(db, store)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
