// Command seed populates the travel database with a geo tree and fake content.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"travelcore/internal/bootstrap"
	"travelcore/internal/config"
	"travelcore/internal/seed"
)

func main() {
	counts := seed.DefaultCounts
	flag.IntVar(&counts.Users, "users", counts.Users, "Number of users to create")
	flag.IntVar(&counts.POIsPerWard, "pois", counts.POIsPerWard, "POI sets (accommodation, location, food, event) per ward")
	flag.IntVar(&counts.Articles, "articles", counts.Articles, "Number of articles to create")
	flag.IntVar(&counts.Posts, "posts", counts.Posts, "Number of community posts to create")
	flag.IntVar(&counts.CommentsPerPost, "comments", counts.CommentsPerPost, "Comments per community post")
	flag.IntVar(&counts.RatingsPerPOI, "ratings", counts.RatingsPerPOI, "Ratings per rateable POI")
	geoFile := flag.String("geo", "", "YAML geo tree to load instead of the embedded one")
	shouldClean := flag.Bool("clean", false, "Delete every row before seeding")
	fast := flag.Bool("fast", false, "Skip bcrypt; seeded users cannot log in")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("refusing to seed a production database")
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{ServiceName: "travelcore-seed"})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() { _ = rt.Close(ctx) }()

	tree, err := loadTree(*geoFile)
	if err != nil {
		log.Fatalf("Failed to load geo tree: %v", err)
	}

	s, err := seed.NewSeeder(rt.DB, seed.Options{SkipBcrypt: *fast})
	if err != nil {
		log.Fatalf("Failed to create seeder: %v", err)
	}
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	report, err := s.Run(ctx, tree, counts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("seeded geo=%v users=%d pois=%d articles=%d posts=%d comments=%d media=%d ratings=%d",
		report.Geo, report.Users, report.POIs, report.Articles, report.Posts, report.Comments, report.Media, report.Ratings)
	if !*fast {
		log.Printf("all seeded users have the password: %s", seed.DefaultPassword)
	}
}

func loadTree(path string) (*seed.GeoTree, error) {
	if path == "" {
		return seed.DefaultGeo()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return seed.GeoFromYAML(data)
}
