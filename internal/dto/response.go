package dto

import (
	"time"

	"GoGallery/model"
)

// MediaFileView is the list representation of one record. Duration is only
// present for videos; 0 there means the probe failed at upload time.
type MediaFileView struct {
	FileID     uint64    `json:"fileId"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	FileName   string    `json:"fileName"`
	FileSize   int64     `json:"fileSize"`
	Folder     string    `json:"folder"`
	Duration   *int      `json:"duration,omitempty"`
	UploadDate time.Time `json:"uploadDate"`
}

// NewMediaFileView maps a record to its list representation.
func NewMediaFileView(file model.MediaFile) MediaFileView {
	view := MediaFileView{
		FileID:     file.ID,
		Type:       string(file.Kind),
		URL:        file.FileURL,
		FileName:   file.FileName,
		FileSize:   file.FileSize,
		Folder:     file.Folder,
		UploadDate: file.CreatedAt,
	}
	if file.Kind == model.KindVideo {
		duration := file.Duration
		view.Duration = &duration
	}
	return view
}
