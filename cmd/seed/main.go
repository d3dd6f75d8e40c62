package main

import (
	"flag"
	"os"

	"canteenhub/internal/config"
	"canteenhub/internal/database"
	"canteenhub/internal/middleware"
	"canteenhub/internal/seed"
)

func main() {
	users := flag.Int("users", 25, "number of users to create")
	reviews := flag.Int("reviews", 3, "reviews per user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		middleware.Logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		middleware.Logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := seed.Run(db, *users, *reviews); err != nil {
		middleware.Logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	middleware.Logger.Info("seeding complete", "users", *users, "reviews_per_user", *reviews)
}
