package database

import "travelcore/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Continent{},
		&models.Country{},
		&models.Region{},
		&models.District{},
		&models.Ward{},
		&models.Accommodation{},
		&models.Room{},
		&models.Location{},
		&models.Food{},
		&models.Organizer{},
		&models.Event{},
		&models.MediaType{},
		&models.MediaCategory{},
		&models.Media{},
		&models.Rating{},
		&models.Permission{},
		&models.Role{},
		&models.User{},
		&models.PasswordResetToken{},
		&models.Article{},
		&models.ArticleCategory{},
		&models.ArticleTag{},
		&models.ArticleArticleCategory{},
		&models.ArticleArticleTag{},
		&models.ArticleComment{},
		&models.ArticleReaction{},
		&models.CommunityPost{},
		&models.CommunityPostCategory{},
		&models.CommunityPostTag{},
		&models.CommunityPostCommunityPostCategory{},
		&models.CommunityPostCommunityPostTag{},
		&models.CommunityPostComment{},
		&models.CommunityPostReaction{},
	}
}
