package service

import (
	"context"
	"math"
	"strings"
	"testing"

	"travelcore/internal/models"

	"github.com/stretchr/testify/require"
)

func TestServiceInputs_RejectedBeforeWrites(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, DefaultRoleConfig{})
	ctx := context.Background()

	author, err := env.access.CreateUser(ctx, CreateUserInput{Email: "inputs@example.com", Password: testPassword})
	require.NoError(t, err)
	article, err := env.content.CreateArticle(ctx, CreateArticleInput{AuthorID: author.ID, Title: "Da Lat", Content: "Pines."})
	require.NoError(t, err)
	acc, err := env.catalog.Accommodations.Create(ctx, &models.Accommodation{Name: "Pine Hill"})
	require.NoError(t, err)
	ref := models.OwnerRef{Kind: models.OwnerAccommodation, ID: acc.ID}

	blank := "  "
	tooHigh := 5.5
	tests := []struct {
		name string
		call func() error
	}{
		{"user email malformed", func() error {
			_, err := env.access.CreateUser(ctx, CreateUserInput{Email: "not-an-email", Password: testPassword})
			return err
		}},
		{"user name too long", func() error {
			_, err := env.access.CreateUser(ctx, CreateUserInput{Email: "long@example.com", FullName: strings.Repeat("x", 256), Password: testPassword})
			return err
		}},
		{"rating above range", func() error {
			_, err := env.refs.AttachRating(ctx, AttachRatingInput{Ref: ref, UserID: author.ID, Rating: 5.5})
			return err
		}},
		{"rating below range", func() error {
			_, err := env.refs.AttachRating(ctx, AttachRatingInput{Ref: ref, UserID: author.ID, Rating: -0.5})
			return err
		}},
		{"rating not a number", func() error {
			_, err := env.refs.AttachRating(ctx, AttachRatingInput{Ref: ref, UserID: author.ID, Rating: math.NaN()})
			return err
		}},
		{"rating update above range", func() error {
			_, err := env.refs.UpdateRating(ctx, UpdateRatingInput{RatingID: 1, UserID: author.ID, Rating: &tooHigh})
			return err
		}},
		{"media negative size", func() error {
			_, err := env.refs.AttachMedia(ctx, AttachMediaInput{Ref: ref, URL: "https://cdn.example.com/p.jpg", FileSize: -1})
			return err
		}},
		{"article blank title", func() error {
			_, err := env.content.CreateArticle(ctx, CreateArticleInput{AuthorID: author.ID, Title: blank, Content: "x"})
			return err
		}},
		{"article update blank title", func() error {
			_, err := env.content.UpdateArticle(ctx, UpdateArticleInput{ArticleID: article.ID, Title: &blank})
			return err
		}},
		{"post blank content", func() error {
			_, err := env.content.CreatePost(ctx, CreatePostInput{UserID: author.ID, Title: "Q", Content: blank})
			return err
		}},
		{"comment empty", func() error {
			_, err := env.comments.CreateArticleComment(ctx, CreateArticleCommentInput{UserID: author.ID, ArticleID: article.ID})
			return err
		}},
		{"geo blank name", func() error {
			_, err := env.geo.Create(ctx, CreateGeoNodeInput{Level: models.LevelContinent, Code: "AS", Name: blank})
			return err
		}},
		{"permission blank name", func() error {
			_, err := env.access.CreatePermission(ctx, CreatePermissionInput{Name: blank, Code: "article.publish"})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertValidationKind(t, tt.call(), models.KindField)
		})
	}

	var ratings int64
	require.NoError(t, env.db.Model(&models.Rating{}).Count(&ratings).Error)
	require.Zero(t, ratings)
	stored, err := env.content.GetArticle(ctx, article.ID)
	require.NoError(t, err)
	require.Equal(t, "Da Lat", stored.Title)
}
