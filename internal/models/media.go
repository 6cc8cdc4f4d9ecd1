package models

// MediaType classifies media (image, video, ...).
type MediaType struct {
	Base
	Name   string `gorm:"size:64;not null;uniqueIndex" json:"name"`
	Status bool   `gorm:"not null" json:"status"`
}

func (MediaType) TableName() string { return "media_types" }

// MediaCategory groups media for display (cover, gallery, menu, ...).
type MediaCategory struct {
	Base
	Name   string `gorm:"size:64;not null;uniqueIndex" json:"name"`
	Status bool   `gorm:"not null" json:"status"`
}

func (MediaCategory) TableName() string { return "media_categories" }

// Media is a file attached to exactly one owner through a polymorphic reference.
type Media struct {
	Base
	ReferenceID     uint      `gorm:"not null;index:idx_media_reference,priority:2" json:"reference_id"`
	ReferenceType   OwnerKind `gorm:"type:varchar(32);not null;index:idx_media_reference,priority:1" json:"reference_type"`
	URL             string    `gorm:"size:1024;not null" json:"url"`
	FileName        string    `gorm:"size:255" json:"file_name"`
	FileSize        int64     `gorm:"not null" json:"file_size"`
	MediaTypeID     *uint     `gorm:"index" json:"media_type_id,omitempty"`
	MediaCategoryID *uint     `gorm:"index" json:"media_category_id,omitempty"`
	Status          bool      `gorm:"not null;index" json:"status"`
}

func (Media) TableName() string { return "media" }

// Ref returns the owner the media is attached to.
func (m Media) Ref() OwnerRef { return OwnerRef{Kind: m.ReferenceType, ID: m.ReferenceID} }

// Rating is a user score attached to a location, accommodation or food.
type Rating struct {
	Base
	ReferenceID   uint      `gorm:"not null;index:idx_ratings_reference,priority:2" json:"reference_id"`
	ReferenceType OwnerKind `gorm:"type:varchar(32);not null;index:idx_ratings_reference,priority:1" json:"reference_type"`
	Rating        float64   `gorm:"not null" json:"rating"`
	Comment       string    `gorm:"type:text" json:"comment"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Status        bool      `gorm:"not null;index" json:"status"`
}

func (Rating) TableName() string { return "ratings" }

// Ref returns the owner the rating is attached to.
func (r Rating) Ref() OwnerRef { return OwnerRef{Kind: r.ReferenceType, ID: r.ReferenceID} }

// Rating bounds.
const (
	MinRating = 0.0
	MaxRating = 5.0
)

// ReferenceAverage is the average rating of one owner.
type ReferenceAverage struct {
	Ref     OwnerRef `json:"ref"`
	Average float64  `json:"average"`
	Count   int64    `json:"count"`
}

// ReferenceSize is the total attached file size of one owner.
type ReferenceSize struct {
	Ref        OwnerRef `json:"ref"`
	TotalBytes int64    `json:"total_bytes"`
	Files      int64    `json:"files"`
}
