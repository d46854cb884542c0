package model

import "time"

// MediaKind discriminates image and video records. A single table with a
// kind column replaces two speculative lookups against parallel collections.
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

type MediaFile struct {
	ID uint64 `gorm:"primaryKey" json:"id,omitempty"`

	UserID uint64 `gorm:"column:user_id;not null;index" json:"user_id,omitempty"`
	User   User   `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	Kind MediaKind `gorm:"column:kind;type:varchar(16);not null" json:"kind"`

	FileName string `gorm:"column:file_name;size:255;not null" json:"file_name"`
	FileURL  string `gorm:"column:file_url;size:1024;not null" json:"file_url"`
	FileSize int64  `gorm:"column:file_size;not null" json:"file_size"`

	// Folder is a grouping tag, always starting with "/". It is not a real
	// directory: folders only exist while at least one record carries them.
	Folder string `gorm:"column:folder;size:512;not null;default:'/';index:idx_user_folder,priority:2" json:"folder"`

	// Duration in whole seconds; 0 when probing failed or for images.
	Duration int `gorm:"column:duration;not null;default:0" json:"duration,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (MediaFile) TableName() string {
	return "media_file"
}
