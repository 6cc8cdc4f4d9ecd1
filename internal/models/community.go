package models

// CommunityPost is user-generated content.
type CommunityPost struct {
	Base
	Title   string `gorm:"size:255;not null;index" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	Status  bool   `gorm:"not null;index" json:"status"`
}

func (CommunityPost) TableName() string { return "community_posts" }

// CommunityPostCategory is a category community posts can be filed under.
type CommunityPostCategory struct {
	Base
	Name        string `gorm:"size:128;not null;uniqueIndex" json:"name"`
	Description string `gorm:"size:512" json:"description"`
	Status      bool   `gorm:"not null;index" json:"status"`
}

func (CommunityPostCategory) TableName() string { return "community_post_categories" }

// CommunityPostTag is a free-form label on community posts.
type CommunityPostTag struct {
	Base
	Name   string `gorm:"size:128;not null;uniqueIndex" json:"name"`
	Status bool   `gorm:"not null;index" json:"status"`
}

func (CommunityPostTag) TableName() string { return "community_post_tags" }

// CommunityPostCommunityPostCategory joins a post to a category.
type CommunityPostCommunityPostCategory struct {
	Base
	CommunityPostID         uint `gorm:"not null;uniqueIndex:idx_post_category_pair,priority:1" json:"community_post_id"`
	CommunityPostCategoryID uint `gorm:"not null;index;uniqueIndex:idx_post_category_pair,priority:2" json:"community_post_category_id"`
}

func (CommunityPostCommunityPostCategory) TableName() string {
	return "community_post_community_post_categories"
}

// CommunityPostCommunityPostTag joins a post to a tag.
type CommunityPostCommunityPostTag struct {
	Base
	CommunityPostID    uint `gorm:"not null;uniqueIndex:idx_post_tag_pair,priority:1" json:"community_post_id"`
	CommunityPostTagID uint `gorm:"not null;index;uniqueIndex:idx_post_tag_pair,priority:2" json:"community_post_tag_id"`
}

func (CommunityPostCommunityPostTag) TableName() string { return "community_post_community_post_tags" }

// CommunityPostComment is a node in a post's comment tree. ParentID is nil for roots
// and otherwise names a comment on the same post. Replies are never stored inline.
type CommunityPostComment struct {
	Base
	Content         string `gorm:"type:text;not null" json:"content"`
	UserID          uint   `gorm:"not null;index" json:"user_id"`
	CommunityPostID uint   `gorm:"not null;index" json:"community_post_id"`
	ParentID        *uint  `gorm:"index" json:"parent_id,omitempty"`
	Status          bool   `gorm:"not null;index" json:"status"`
}

func (CommunityPostComment) TableName() string { return "community_post_comments" }

// CommunityPostReaction is one user's reaction to a post, or to a comment on it.
// CommentID is 0 for a reaction on the post itself so the unique index covers both cases.
type CommunityPostReaction struct {
	Base
	UserID          uint `gorm:"not null;uniqueIndex:idx_post_reaction_target,priority:1" json:"user_id"`
	CommunityPostID uint `gorm:"not null;index;uniqueIndex:idx_post_reaction_target,priority:2" json:"community_post_id"`
	CommentID       uint `gorm:"not null;default:0;uniqueIndex:idx_post_reaction_target,priority:3" json:"comment_id"`
	Status          bool `gorm:"not null" json:"status"`
}

func (CommunityPostReaction) TableName() string { return "community_post_reactions" }

// CommentNode is a comment with its visible replies, as returned by a thread listing.
type CommentNode struct {
	CommunityPostComment
	Replies []*CommentNode `json:"replies"`
}
