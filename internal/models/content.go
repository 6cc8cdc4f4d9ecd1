package models

// Article is an editorial piece, optionally tagged to a place in the geo tree.
type Article struct {
	Base
	GeoRefs
	Title     string `gorm:"size:255;not null;index" json:"title"`
	Summary   string `gorm:"size:1024" json:"summary"`
	Content   string `gorm:"type:text;not null" json:"content"`
	AuthorID  uint   `gorm:"not null;index" json:"author_id"`
	ViewCount int64  `gorm:"not null;default:0" json:"view_count"`
	Status    bool   `gorm:"not null;index" json:"status"`
}

func (Article) TableName() string { return "articles" }

// ArticleCategory is a category articles can be filed under.
type ArticleCategory struct {
	Base
	Name        string `gorm:"size:128;not null;uniqueIndex" json:"name"`
	Description string `gorm:"size:512" json:"description"`
	Status      bool   `gorm:"not null;index" json:"status"`
}

func (ArticleCategory) TableName() string { return "article_categories" }

// ArticleTag is a free-form label on articles.
type ArticleTag struct {
	Base
	Name   string `gorm:"size:128;not null;uniqueIndex" json:"name"`
	Status bool   `gorm:"not null;index" json:"status"`
}

func (ArticleTag) TableName() string { return "article_tags" }

// ArticleArticleCategory is the identified join row between an article and a category.
type ArticleArticleCategory struct {
	Base
	ArticleID         uint `gorm:"not null;uniqueIndex:idx_article_category_pair,priority:1" json:"article_id"`
	ArticleCategoryID uint `gorm:"not null;index;uniqueIndex:idx_article_category_pair,priority:2" json:"article_category_id"`
}

func (ArticleArticleCategory) TableName() string { return "article_article_categories" }

// ArticleArticleTag is the identified join row between an article and a tag.
type ArticleArticleTag struct {
	Base
	ArticleID    uint `gorm:"not null;uniqueIndex:idx_article_tag_pair,priority:1" json:"article_id"`
	ArticleTagID uint `gorm:"not null;index;uniqueIndex:idx_article_tag_pair,priority:2" json:"article_tag_id"`
}

func (ArticleArticleTag) TableName() string { return "article_article_tags" }

// ArticleComment is a flat comment on an article. Status false means hidden.
type ArticleComment struct {
	Base
	Content   string `gorm:"type:text;not null" json:"content"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	ArticleID uint   `gorm:"not null;index" json:"article_id"`
	Status    bool   `gorm:"not null;index" json:"status"`
}

func (ArticleComment) TableName() string { return "article_comments" }

// ArticleReaction records one user's reaction to an article; at most one row per pair.
type ArticleReaction struct {
	Base
	UserID    uint `gorm:"not null;uniqueIndex:idx_article_reaction_pair,priority:1" json:"user_id"`
	ArticleID uint `gorm:"not null;index;uniqueIndex:idx_article_reaction_pair,priority:2" json:"article_id"`
	Status    bool `gorm:"not null" json:"status"`
}

func (ArticleReaction) TableName() string { return "article_reactions" }
