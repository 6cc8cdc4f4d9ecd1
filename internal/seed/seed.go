package seed

import (
	"context"
	"fmt"
	"log/slog"

	"travelcore/internal/database"
	"travelcore/internal/models"
	"travelcore/internal/observability"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Counts sizes a seeding run.
type Counts struct {
	Users           int
	POIsPerWard     int
	Articles        int
	Posts           int
	CommentsPerPost int
	RatingsPerPOI   int
}

// DefaultCounts is a small but fully connected data set.
var DefaultCounts = Counts{
	Users:           20,
	POIsPerWard:     2,
	Articles:        30,
	Posts:           40,
	CommentsPerPost: 6,
	RatingsPerPOI:   3,
}

// Report tallies what a run created.
type Report struct {
	Geo      map[models.GeoLevel]int
	Users    int
	POIs     int
	Articles int
	Posts    int
	Comments int
	Media    int
	Ratings  int
}

// Seeder populates a database with a geo tree and fake content placed in it.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	f, err := NewFactory(db, opts)
	if err != nil {
		return nil, err
	}
	return &Seeder{db: db, factory: f}, nil
}

// ClearAll physically deletes every row of every persistent table.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM role_permissions").Error; err != nil {
			return fmt.Errorf("clear role_permissions: %w", err)
		}
		all := database.PersistentModels()
		for i := len(all) - 1; i >= 0; i-- {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(all[i]).Error; err != nil {
				return fmt.Errorf("clear %T: %w", all[i], err)
			}
		}
		return nil
	})
}

// Run seeds tree and then the fake content. Content is only placed on wards of tree.
func (s *Seeder) Run(ctx context.Context, tree *GeoTree, counts Counts) (*Report, error) {
	idx, err := SeedGeo(ctx, s.db, tree)
	if err != nil {
		return nil, err
	}
	report := &Report{Geo: idx.Nodes}
	observability.Logger.InfoContext(ctx, "geo tree seeded", slog.Int("wards", len(idx.Leaves)))

	users := make([]*models.User, 0, counts.Users)
	for i := 0; i < counts.Users; i++ {
		u, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	report.Users = len(users)
	if len(users) == 0 {
		return report, nil
	}
	pickUser := func() *models.User { return users[gofakeit.Number(0, len(users)-1)] }

	organizer, err := s.factory.CreateOrganizer()
	if err != nil {
		return nil, fmt.Errorf("create organizer: %w", err)
	}

	var owners []models.OwnerRef
	for _, refs := range idx.Leaves {
		for i := 0; i < counts.POIsPerWard; i++ {
			created, err := s.seedPOIs(refs, organizer)
			if err != nil {
				return nil, err
			}
			owners = append(owners, created...)
		}
	}
	report.POIs = len(owners)

	for _, ref := range owners {
		if _, err := s.factory.CreateMedia(ref); err != nil {
			return nil, fmt.Errorf("create media for %s: %w", ref, err)
		}
		report.Media++
		if !ref.Kind.AllowedIn(models.RatingOwnerKinds) {
			continue
		}
		for i := 0; i < counts.RatingsPerPOI; i++ {
			if _, err := s.factory.CreateRating(pickUser(), ref); err != nil {
				return nil, fmt.Errorf("create rating for %s: %w", ref, err)
			}
			report.Ratings++
		}
	}

	for i := 0; i < counts.Articles; i++ {
		refs := models.GeoRefs{}
		if len(idx.Leaves) > 0 {
			refs = idx.Leaves[gofakeit.Number(0, len(idx.Leaves)-1)]
		}
		if _, err := s.factory.CreateArticle(pickUser(), refs); err != nil {
			return nil, fmt.Errorf("create article: %w", err)
		}
		report.Articles++
	}

	for i := 0; i < counts.Posts; i++ {
		post, err := s.factory.CreateCommunityPost(pickUser())
		if err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		report.Posts++

		var thread []*models.CommunityPostComment
		for j := 0; j < counts.CommentsPerPost; j++ {
			var parent *models.CommunityPostComment
			// Roughly half the comments reply to an earlier one.
			if len(thread) > 0 && gofakeit.Bool() {
				parent = thread[gofakeit.Number(0, len(thread)-1)]
			}
			c, err := s.factory.CreatePostComment(pickUser(), post, parent)
			if err != nil {
				return nil, fmt.Errorf("create comment: %w", err)
			}
			thread = append(thread, c)
			report.Comments++
		}
	}

	observability.Logger.InfoContext(ctx, "seed complete",
		slog.Int("users", report.Users),
		slog.Int("pois", report.POIs),
		slog.Int("articles", report.Articles),
		slog.Int("posts", report.Posts),
	)
	return report, nil
}

func (s *Seeder) seedPOIs(refs models.GeoRefs, organizer *models.Organizer) ([]models.OwnerRef, error) {
	acc, err := s.factory.CreateAccommodation(refs)
	if err != nil {
		return nil, fmt.Errorf("create accommodation: %w", err)
	}
	if _, err := s.factory.CreateRoom(acc); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	loc, err := s.factory.CreateLocation(refs)
	if err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	food, err := s.factory.CreateFood(refs)
	if err != nil {
		return nil, fmt.Errorf("create food: %w", err)
	}
	event, err := s.factory.CreateEvent(refs, organizer)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return []models.OwnerRef{
		{Kind: models.OwnerAccommodation, ID: acc.ID},
		{Kind: models.OwnerLocation, ID: loc.ID},
		{Kind: models.OwnerFood, ID: food.ID},
		{Kind: models.OwnerEvent, ID: event.ID},
	}, nil
}
