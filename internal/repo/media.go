package repo

import (
	"GoGallery/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a record does not exist or belongs to
// another user. Both cases look identical to the caller.
var ErrNotFound = errors.New("record not found")

// MediaRepoDB is the gorm-backed media metadata repository.
type MediaRepoDB struct {
	db *gorm.DB
}

// NewMediaRepo creates a media repository on the given connection.
func NewMediaRepo(db *gorm.DB) *MediaRepoDB {
	return &MediaRepoDB{db: db}
}

// Create inserts a media record.
func (r *MediaRepoDB) Create(ctx context.Context, file *model.MediaFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

// FindByID returns the record with the given id, scoped to its owner.
func (r *MediaRepoDB) FindByID(ctx context.Context, userID, fileID uint64) (*model.MediaFile, error) {
	var file model.MediaFile
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", fileID, userID).
		First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// ListByFolder returns all of a user's records carrying the given folder tag.
func (r *MediaRepoDB) ListByFolder(ctx context.Context, userID uint64, folder string) ([]model.MediaFile, error) {
	var files []model.MediaFile
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND folder = ?", userID, folder).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}

// ListFolders returns the distinct folder values across all of a user's records.
func (r *MediaRepoDB) ListFolders(ctx context.Context, userID uint64) ([]string, error) {
	var folders []string
	err := r.db.WithContext(ctx).
		Model(&model.MediaFile{}).
		Where("user_id = ?", userID).
		Distinct("folder").
		Pluck("folder", &folders).Error
	return folders, err
}

// UpdateName updates name and location after a rename. Returns ErrNotFound
// when the record disappeared mid-operation.
func (r *MediaRepoDB) UpdateName(ctx context.Context, userID, fileID uint64, fileName, fileURL string) error {
	res := r.db.WithContext(ctx).
		Model(&model.MediaFile{}).
		Where("id = ? AND user_id = ?", fileID, userID).
		Updates(map[string]interface{}{
			"file_name": fileName,
			"file_url":  fileURL,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateContent updates all content-bearing fields after a content update.
func (r *MediaRepoDB) UpdateContent(ctx context.Context, userID, fileID uint64, fileName, fileURL string, fileSize int64, duration int) error {
	res := r.db.WithContext(ctx).
		Model(&model.MediaFile{}).
		Where("id = ? AND user_id = ?", fileID, userID).
		Updates(map[string]interface{}{
			"file_name": fileName,
			"file_url":  fileURL,
			"file_size": fileSize,
			"duration":  duration,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a record scoped to its owner. Returns ErrNotFound when
// nothing was deleted.
func (r *MediaRepoDB) Delete(ctx context.Context, userID, fileID uint64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", fileID, userID).
		Delete(&model.MediaFile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
