package service

import (
	"context"
	"errors"
	"testing"

	"travelcore/internal/models"
	"travelcore/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	acc42  = models.OwnerRef{Kind: models.OwnerAccommodation, ID: 42}
	food7  = models.OwnerRef{Kind: models.OwnerFood, ID: 7}
	post3  = models.OwnerRef{Kind: models.OwnerCommunityPost, ID: 3}
	ghost9 = models.OwnerRef{Kind: models.OwnerLocation, ID: 9}
)

func newReferenceService(media *mediaRepoStub, ratings *ratingRepoStub) *ReferenceService {
	owners := &ownerRepoStub{live: map[models.OwnerRef]string{
		acc42: "Hanoi Riverside",
		food7: "Pho Bo",
		post3: "Best night markets",
	}}
	return NewReferenceService(owners, media, ratings, liveSet{1: true}, liveSet{5: true}, liveSet{6: true})
}

func TestReferenceService_AttachRating_Validation(t *testing.T) {
	t.Parallel()
	svc := newReferenceService(noopMediaRepo(), noopRatingRepo())
	ctx := context.Background()

	tests := []struct {
		name string
		in   AttachRatingInput
		kind models.ValidationKind
	}{
		{"kind outside rating set", AttachRatingInput{Ref: post3, UserID: 1, Rating: 4}, models.KindDiscriminator},
		{"unknown kind", AttachRatingInput{Ref: models.OwnerRef{Kind: "planet", ID: 1}, UserID: 1, Rating: 4}, models.KindDiscriminator},
		{"above range", AttachRatingInput{Ref: acc42, UserID: 1, Rating: 5.5}, models.KindField},
		{"below range", AttachRatingInput{Ref: acc42, UserID: 1, Rating: -0.5}, models.KindField},
		{"inactive user", AttachRatingInput{Ref: acc42, UserID: 2, Rating: 4}, models.KindReferential},
		{"missing owner", AttachRatingInput{Ref: ghost9, UserID: 1, Rating: 4}, models.KindReferential},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.AttachRating(ctx, tt.in)
			assertValidationKind(t, err, tt.kind)
		})
	}
}

func TestReferenceService_AttachRating_Success(t *testing.T) {
	t.Parallel()
	ratings := noopRatingRepo()
	var stored *models.Rating
	ratings.createFn = func(_ context.Context, r *models.Rating) error {
		r.ID = 11
		stored = r
		return nil
	}
	svc := newReferenceService(noopMediaRepo(), ratings)

	rating, err := svc.AttachRating(context.Background(), AttachRatingInput{Ref: acc42, UserID: 1, Rating: 4.5, Comment: "quiet"})
	require.NoError(t, err)
	assert.Equal(t, uint(11), rating.ID)
	assert.Equal(t, acc42, stored.Ref())
	assert.InDelta(t, 4.5, stored.Rating, 1e-9)
}

func TestReferenceService_AttachMedia(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newReferenceService(noopMediaRepo(), noopRatingRepo())

	media, err := svc.AttachMedia(ctx, AttachMediaInput{Ref: post3, URL: "https://cdn.example.com/a.jpg", FileSize: 2048, MediaTypeID: uintPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, post3, media.Ref())

	_, err = svc.AttachMedia(ctx, AttachMediaInput{Ref: post3, URL: "https://cdn.example.com/a.jpg", MediaTypeID: uintPtr(99)})
	assertValidationKind(t, err, models.KindReferential)

	_, err = svc.AttachMedia(ctx, AttachMediaInput{Ref: post3, URL: " "})
	assertValidationKind(t, err, models.KindField)

	_, err = svc.AttachMedia(ctx, AttachMediaInput{Ref: models.OwnerRef{Kind: "room", ID: 1}, URL: "x"})
	assertValidationKind(t, err, models.KindDiscriminator)
}

func TestReferenceService_ResolveOwners(t *testing.T) {
	t.Parallel()
	svc := newReferenceService(noopMediaRepo(), noopRatingRepo())
	before := testutil.ToFloat64(observability.OrphanReferences.WithLabelValues("location"))

	out, err := svc.ResolveOwners(context.Background(), []models.OwnerRef{acc42, ghost9, food7, acc42})
	require.NoError(t, err)
	require.Len(t, out, 4)

	assert.False(t, out[0].Orphan)
	assert.Equal(t, "Hanoi Riverside", out[0].Owner.Label)
	assert.True(t, out[1].Orphan)
	assert.Nil(t, out[1].Owner)
	assert.Equal(t, ghost9, out[1].Ref)
	assert.Equal(t, "Pho Bo", out[2].Owner.Label)
	assert.Equal(t, out[0], out[3])

	after := testutil.ToFloat64(observability.OrphanReferences.WithLabelValues("location"))
	assert.GreaterOrEqual(t, after-before, 1.0)
}

func TestReferenceService_ResolveOwner_Orphan(t *testing.T) {
	t.Parallel()
	svc := newReferenceService(noopMediaRepo(), noopRatingRepo())

	rating := &models.Rating{ReferenceID: 9, ReferenceType: models.OwnerLocation}
	res, err := svc.ResolveOwner(context.Background(), rating)
	require.NoError(t, err)
	assert.True(t, res.Orphan)

	empty, err := svc.ResolveOwners(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestReferenceService_ResolveOwners_StorageError(t *testing.T) {
	t.Parallel()
	boom := errors.New("connection reset")
	svc := NewReferenceService(&ownerRepoStub{resolveErr: boom}, noopMediaRepo(), noopRatingRepo(), liveSet{}, liveSet{}, liveSet{})
	_, err := svc.ResolveOwners(context.Background(), []models.OwnerRef{acc42})
	assert.ErrorIs(t, err, boom)
}

func TestReferenceService_UpdateRating_AuthorOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ratings := noopRatingRepo()
	ratings.getByIDFn = func(_ context.Context, id uint) (*models.Rating, error) {
		return &models.Rating{Base: models.Base{ID: id}, UserID: 1, ReferenceID: 42, ReferenceType: models.OwnerAccommodation, Rating: 3}, nil
	}
	var updated map[string]interface{}
	ratings.updateFn = func(_ context.Context, _ uint, fields map[string]interface{}) error {
		updated = fields
		return nil
	}
	svc := newReferenceService(noopMediaRepo(), ratings)

	value := 4.0
	_, err := svc.UpdateRating(ctx, UpdateRatingInput{RatingID: 1, UserID: 2, Rating: &value})
	assertValidationError(t, err)

	tooHigh := 6.0
	_, err = svc.UpdateRating(ctx, UpdateRatingInput{RatingID: 1, UserID: 1, Rating: &tooHigh})
	assertValidationError(t, err)

	rating, err := svc.UpdateRating(ctx, UpdateRatingInput{RatingID: 1, UserID: 1, Rating: &value})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, rating.Rating, 1e-9)
	assert.Equal(t, map[string]interface{}{"rating": 4.0}, updated)

	assertValidationError(t, svc.DeleteRating(ctx, 1, 2))
	assert.NoError(t, svc.DeleteRating(ctx, 1, 1))
}

func TestReferenceService_FindOrphaned_KindFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	media := noopMediaRepo()
	var got []models.OwnerKind
	media.orphanedFn = func(_ context.Context, kinds []models.OwnerKind) ([]models.Media, error) {
		got = kinds
		return nil, nil
	}
	svc := newReferenceService(media, noopRatingRepo())

	_, err := svc.FindOrphanedMedia(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, models.MediaOwnerKinds, got)

	kind := models.OwnerEvent
	_, err = svc.FindOrphanedMedia(ctx, &kind)
	require.NoError(t, err)
	assert.Equal(t, []models.OwnerKind{models.OwnerEvent}, got)

	article := models.OwnerArticle
	_, err = svc.FindOrphanedRatings(ctx, &article)
	assertValidationKind(t, err, models.KindDiscriminator)
}
