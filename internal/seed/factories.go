// Package seed provides helpers to create demo data for the travel database.
// These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"strings"
	"time"

	"travelcore/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "TravelSeed2024!"

// Options configures seeding.
type Options struct {
	// SkipBcrypt stores an unusable placeholder hash instead of hashing DefaultPassword.
	SkipBcrypt bool
	// RandSeed fixes the fake data generator; zero seeds from the clock.
	RandSeed int64
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	hash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)

	f := &Factory{db: db, opts: opts, hash: "seed-placeholder"}
	if !opts.SkipBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash seed password: %w", err)
		}
		f.hash = string(hashed)
	}
	return f, nil
}

func create[T any](db *gorm.DB, row *T, overrides []func(*T)) (*T, error) {
	for _, override := range overrides {
		override(row)
	}
	if err := db.Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// CreateUser persists a sample user with DefaultPassword.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Email:          strings.ToLower(fmt.Sprintf("%s.%d@%s", gofakeit.Username(), gofakeit.Number(100, 99999), gofakeit.DomainName())),
		FullName:       gofakeit.Name(),
		HashedPassword: f.hash,
	}
	return create(f.db, user, overrides)
}

// CreateAccommodation persists a sample accommodation placed at refs.
func (f *Factory) CreateAccommodation(refs models.GeoRefs, overrides ...func(*models.Accommodation)) (*models.Accommodation, error) {
	acc := &models.Accommodation{
		GeoRefs:     refs,
		Name:        fmt.Sprintf("%s %s", gofakeit.LastName(), gofakeit.RandomString([]string{"Hotel", "Hostel", "Homestay", "Resort", "Inn"})),
		Description: gofakeit.Paragraph(1, 3, 12, "\n"),
		Address:     gofakeit.Street(),
		StarRating:  gofakeit.Number(1, 5),
		Latitude:    gofakeit.Latitude(),
		Longitude:   gofakeit.Longitude(),
	}
	return create(f.db, acc, overrides)
}

// CreateRoom persists a sample room of the accommodation.
func (f *Factory) CreateRoom(acc *models.Accommodation, overrides ...func(*models.Room)) (*models.Room, error) {
	room := &models.Room{
		AccommodationID: acc.ID,
		Name:            fmt.Sprintf("%s %d", gofakeit.RandomString([]string{"Standard", "Deluxe", "Suite", "Dorm"}), gofakeit.Number(100, 599)),
		Capacity:        gofakeit.Number(1, 6),
		PricePerNight:   gofakeit.Price(15, 400),
	}
	return create(f.db, room, overrides)
}

// CreateLocation persists a sample sight placed at refs.
func (f *Factory) CreateLocation(refs models.GeoRefs, overrides ...func(*models.Location)) (*models.Location, error) {
	loc := &models.Location{
		GeoRefs:     refs,
		Name:        fmt.Sprintf("%s %s", gofakeit.RandomString([]string{"Old", "Grand", "Royal", "Hidden"}), gofakeit.RandomString([]string{"Temple", "Market", "Museum", "Garden", "Bridge"})),
		Description: gofakeit.Paragraph(1, 2, 12, "\n"),
		Address:     gofakeit.Street(),
		Latitude:    gofakeit.Latitude(),
		Longitude:   gofakeit.Longitude(),
	}
	return create(f.db, loc, overrides)
}

// CreateFood persists a sample dish placed at refs.
func (f *Factory) CreateFood(refs models.GeoRefs, overrides ...func(*models.Food)) (*models.Food, error) {
	from := gofakeit.Price(1, 20)
	food := &models.Food{
		GeoRefs:     refs,
		Name:        gofakeit.Dinner(),
		Description: gofakeit.Sentence(12),
		PriceFrom:   from,
		PriceTo:     from + gofakeit.Price(0, 30),
	}
	return create(f.db, food, overrides)
}

// CreateOrganizer persists a sample event organizer.
func (f *Factory) CreateOrganizer(overrides ...func(*models.Organizer)) (*models.Organizer, error) {
	org := &models.Organizer{
		Name:    gofakeit.Company(),
		Email:   gofakeit.Email(),
		Phone:   gofakeit.Phone(),
		Website: gofakeit.URL(),
	}
	return create(f.db, org, overrides)
}

// CreateEvent persists a sample event within the next 90 days, run by organizer when given.
func (f *Factory) CreateEvent(refs models.GeoRefs, organizer *models.Organizer, overrides ...func(*models.Event)) (*models.Event, error) {
	start := time.Now().UTC().Add(time.Duration(gofakeit.Number(1, 90)) * 24 * time.Hour).Truncate(time.Hour)
	end := start.Add(time.Duration(gofakeit.Number(2, 72)) * time.Hour)
	event := &models.Event{
		GeoRefs:     refs,
		Name:        fmt.Sprintf("%s Festival", gofakeit.Noun()),
		Description: gofakeit.Paragraph(1, 2, 10, "\n"),
		StartsAt:    start,
		EndsAt:      &end,
	}
	if organizer != nil {
		event.OrganizerID = &organizer.ID
	}
	return create(f.db, event, overrides)
}

// CreateArticle persists a sample article by author placed at refs.
func (f *Factory) CreateArticle(author *models.User, refs models.GeoRefs, overrides ...func(*models.Article)) (*models.Article, error) {
	article := &models.Article{
		GeoRefs:   refs,
		Title:     gofakeit.Sentence(6),
		Summary:   gofakeit.Sentence(16),
		Content:   gofakeit.Paragraph(3, 4, 14, "\n\n"),
		AuthorID:  author.ID,
		ViewCount: int64(gofakeit.Number(0, 5000)),
	}
	return create(f.db, article, overrides)
}

// CreateArticleComment persists a sample comment by user on article.
func (f *Factory) CreateArticleComment(user *models.User, article *models.Article, overrides ...func(*models.ArticleComment)) (*models.ArticleComment, error) {
	comment := &models.ArticleComment{
		Content:   gofakeit.Sentence(10),
		UserID:    user.ID,
		ArticleID: article.ID,
	}
	return create(f.db, comment, overrides)
}

// CreateCommunityPost persists a sample post by user.
func (f *Factory) CreateCommunityPost(user *models.User, overrides ...func(*models.CommunityPost)) (*models.CommunityPost, error) {
	post := &models.CommunityPost{
		Title:   gofakeit.Question(),
		Content: gofakeit.Paragraph(1, 3, 10, "\n"),
		UserID:  user.ID,
	}
	return create(f.db, post, overrides)
}

// CreatePostComment persists a sample comment on post, replying to parent when given.
// parent must belong to the same post.
func (f *Factory) CreatePostComment(user *models.User, post *models.CommunityPost, parent *models.CommunityPostComment, overrides ...func(*models.CommunityPostComment)) (*models.CommunityPostComment, error) {
	comment := &models.CommunityPostComment{
		Content:         gofakeit.Sentence(8),
		UserID:          user.ID,
		CommunityPostID: post.ID,
	}
	if parent != nil {
		if parent.CommunityPostID != post.ID {
			return nil, fmt.Errorf("parent comment %d belongs to post %d, not %d", parent.ID, parent.CommunityPostID, post.ID)
		}
		comment.ParentID = &parent.ID
	}
	return create(f.db, comment, overrides)
}

// CreateMedia persists a sample image attached to ref.
func (f *Factory) CreateMedia(ref models.OwnerRef, overrides ...func(*models.Media)) (*models.Media, error) {
	name := gofakeit.UUID()
	media := &models.Media{
		ReferenceID:   ref.ID,
		ReferenceType: ref.Kind,
		URL:           fmt.Sprintf("https://picsum.photos/seed/%s/1200/800", name),
		FileName:      name + ".jpg",
		FileSize:      int64(gofakeit.Number(40_000, 4_000_000)),
	}
	return create(f.db, media, overrides)
}

// CreateRating persists a half-star rating by user on ref.
func (f *Factory) CreateRating(user *models.User, ref models.OwnerRef, overrides ...func(*models.Rating)) (*models.Rating, error) {
	rating := &models.Rating{
		ReferenceID:   ref.ID,
		ReferenceType: ref.Kind,
		Rating:        float64(gofakeit.Number(int(models.MinRating*2), int(models.MaxRating*2))) / 2,
		Comment:       gofakeit.Sentence(8),
		UserID:        user.ID,
	}
	return create(f.db, rating, overrides)
}
