package service

import (
	"bytes"
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"GoGallery/internal/mq"
	"GoGallery/internal/repo"
	"GoGallery/internal/storage"
	"GoGallery/model"
)

// MediaRepo is the metadata store surface the gallery needs.
type MediaRepo interface {
	Create(ctx context.Context, file *model.MediaFile) error
	FindByID(ctx context.Context, userID, fileID uint64) (*model.MediaFile, error)
	ListByFolder(ctx context.Context, userID uint64, folder string) ([]model.MediaFile, error)
	ListFolders(ctx context.Context, userID uint64) ([]string, error)
	UpdateName(ctx context.Context, userID, fileID uint64, fileName, fileURL string) error
	UpdateContent(ctx context.Context, userID, fileID uint64, fileName, fileURL string, fileSize int64, duration int) error
	Delete(ctx context.Context, userID, fileID uint64) error
}

// OpLog records multi-step mutation intents.
type OpLog interface {
	Begin(ctx context.Context, entry *model.OperationLog) error
	Complete(ctx context.Context, id string) error
}

// FolderIndex caches the set of a user's distinct folder tags.
type FolderIndex interface {
	Members(ctx context.Context, userID uint64) ([]string, bool)
	Prime(ctx context.Context, userID uint64, folders []string) error
	Add(ctx context.Context, userID uint64, folder string) error
	Invalidate(ctx context.Context, userID uint64) error
}

// DurationProbe measures video duration from raw bytes.
type DurationProbe interface {
	Duration(ctx context.Context, data []byte) (int, error)
}

// OrphanPublisher emits events for stored objects left behind by partially
// failed mutations.
type OrphanPublisher interface {
	PublishOrphan(ctx context.Context, event mq.OrphanEvent) error
}

// GalleryService orchestrates the lifecycle of a user's media files across
// object storage and the metadata store. Multi-step mutations write an
// operation-log intent before the first side effect and close it after the
// last one; partial failures are logged and published as orphan events, not
// rolled back.
type GalleryService struct {
	repo    MediaRepo
	store   storage.Store
	oplog   OpLog
	folders FolderIndex
	probe   DurationProbe
	orphans OrphanPublisher
	bucket  string

	publicURL func(bucket, object string) string
}

// NewGalleryService wires a gallery service. probe and orphans may be nil.
func NewGalleryService(
	mediaRepo MediaRepo,
	store storage.Store,
	oplog OpLog,
	folders FolderIndex,
	probe DurationProbe,
	orphans OrphanPublisher,
	bucket string,
) *GalleryService {
	return &GalleryService{
		repo:      mediaRepo,
		store:     store,
		oplog:     oplog,
		folders:   folders,
		probe:     probe,
		orphans:   orphans,
		bucket:    bucket,
		publicURL: storage.PublicURL,
	}
}

// Upload stores the bytes first, then creates the metadata record. A failed
// metadata write leaves the stored object orphaned; it is reported for
// reconciliation instead of being cleaned up inline.
func (s *GalleryService) Upload(ctx context.Context, userID uint64, data []byte, fileName, mimeType, folder string) (*model.MediaFile, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	kind, err := ClassifyUpload(mimeType, fileName)
	if err != nil {
		return nil, err
	}
	folder = NormalizeFolder(folder)
	if !ValidFolder(folder) {
		return nil, ErrInvalidFolder
	}

	key := StorageKey(fileName)
	entry := &model.OperationLog{
		ID:     uuid.NewString(),
		UserID: userID,
		Op:     "upload",
		NewKey: key,
	}
	if err := s.oplog.Begin(ctx, entry); err != nil {
		return nil, &DatabaseError{Op: "operation log", Err: err}
	}

	if err := s.store.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), storage.PutOptions{
		ContentType: contentTypeOrDefault(mimeType),
	}); err != nil {
		return nil, &StorageError{Op: "put", Err: err}
	}

	duration := 0
	if kind == model.KindVideo {
		duration = s.probeDuration(ctx, fileName, data)
	}

	file := &model.MediaFile{
		UserID:   userID,
		Kind:     kind,
		FileName: fileName,
		FileURL:  s.publicURL(s.bucket, key),
		FileSize: int64(len(data)),
		Folder:   folder,
		Duration: duration,
	}
	if err := s.repo.Create(ctx, file); err != nil {
		s.reportOrphan(ctx, entry.ID, userID, key, "metadata create failed after storage write")
		return nil, &DatabaseError{Op: "create media record", Err: err}
	}

	if err := s.folders.Add(ctx, userID, folder); err != nil {
		log.Printf("folder index add failed for user %d: %v", userID, err)
	}
	s.complete(ctx, entry.ID)
	return file, nil
}

// List returns the caller's records in the given folder plus the distinct
// first-path segments strictly below it, derived from all folder tags the
// caller's records carry.
func (s *GalleryService) List(ctx context.Context, userID uint64, folder string) ([]model.MediaFile, []string, error) {
	folder = NormalizeFolder(folder)
	files, err := s.repo.ListByFolder(ctx, userID, folder)
	if err != nil {
		return nil, nil, &DatabaseError{Op: "list media records", Err: err}
	}

	all, ok := s.folders.Members(ctx, userID)
	if !ok {
		all, err = s.repo.ListFolders(ctx, userID)
		if err != nil {
			return nil, nil, &DatabaseError{Op: "list folders", Err: err}
		}
		if err := s.folders.Prime(ctx, userID, all); err != nil {
			log.Printf("folder index prime failed for user %d: %v", userID, err)
		}
	}
	return files, ChildSegments(all, folder), nil
}

// Delete removes the stored object first, then the metadata record. A
// metadata delete that fails afterwards leaves a record with a dead link,
// which the view layer tolerates; an invisible orphaned object would not be.
func (s *GalleryService) Delete(ctx context.Context, userID, fileID uint64) error {
	file, err := s.findOwned(ctx, userID, fileID)
	if err != nil {
		return err
	}
	key := ObjectKeyFromURL(file.FileURL)

	entry := &model.OperationLog{
		ID:     uuid.NewString(),
		UserID: userID,
		Op:     "delete",
		FileID: fileID,
		OldKey: key,
	}
	if err := s.oplog.Begin(ctx, entry); err != nil {
		return &DatabaseError{Op: "operation log", Err: err}
	}

	if err := s.store.RemoveObject(ctx, s.bucket, key); err != nil {
		return &StorageError{Op: "remove", Err: err}
	}
	if err := s.repo.Delete(ctx, userID, fileID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Record disappeared mid-operation; its object is gone now too.
			return ErrNotFound
		}
		log.Printf("media record %d delete failed after storage remove; record now references a deleted object: %v", fileID, err)
		return &DatabaseError{Op: "delete media record", Err: err}
	}

	if err := s.folders.Invalidate(ctx, userID); err != nil {
		log.Printf("folder index invalidate failed for user %d: %v", userID, err)
	}
	s.complete(ctx, entry.ID)
	return nil
}

// DeleteMultiple removes records sequentially. Missing ids are skipped;
// whatever completed before a failure stays completed.
func (s *GalleryService) DeleteMultiple(ctx context.Context, userID uint64, fileIDs []uint64) error {
	for _, fileID := range fileIDs {
		if err := s.Delete(ctx, userID, fileID); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return err
		}
	}
	return nil
}

// Rename copies the object to a key preserving the upload-time prefix,
// deletes the old key, then updates the record. A failed copy aborts with
// no mutation; a failed old-key delete leaks the old object (reported).
func (s *GalleryService) Rename(ctx context.Context, userID, fileID uint64, newFileName string) (*model.MediaFile, error) {
	if !ValidFileName(newFileName) {
		return nil, ErrInvalidFileName
	}
	file, err := s.findOwned(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	oldKey := ObjectKeyFromURL(file.FileURL)
	newKey := RenamedObjectKey(oldKey, newFileName)

	entry := &model.OperationLog{
		ID:     uuid.NewString(),
		UserID: userID,
		Op:     "rename",
		FileID: fileID,
		OldKey: oldKey,
		NewKey: newKey,
	}
	if err := s.oplog.Begin(ctx, entry); err != nil {
		return nil, &DatabaseError{Op: "operation log", Err: err}
	}

	if err := s.store.CopyObject(ctx,
		storage.CopyDest{Bucket: s.bucket, Object: newKey},
		storage.CopySource{Bucket: s.bucket, Object: oldKey},
	); err != nil {
		return nil, &StorageError{Op: "copy", Err: err}
	}
	if err := s.store.RemoveObject(ctx, s.bucket, oldKey); err != nil {
		s.reportOrphan(ctx, entry.ID, userID, oldKey, "old object delete failed after rename copy")
	}

	newURL := s.publicURL(s.bucket, newKey)
	if err := s.repo.UpdateName(ctx, userID, fileID, newFileName, newURL); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.reportOrphan(ctx, entry.ID, userID, newKey, "record vanished during rename")
			return nil, ErrNotFound
		}
		log.Printf("media record %d rename update failed; record still references old key %s: %v", fileID, oldKey, err)
		return nil, &DatabaseError{Op: "update media record", Err: err}
	}

	file.FileName = newFileName
	file.FileURL = newURL
	s.complete(ctx, entry.ID)
	return file, nil
}

// Update replaces content: delete old object, upload new bytes under a
// fresh key, update the record. The delete-then-upload order means a
// failure in between leaves the record pointing at a deleted object; that
// gap is reported, not guarded against.
func (s *GalleryService) Update(ctx context.Context, userID, fileID uint64, data []byte, fileName, mimeType string) (*model.MediaFile, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	file, err := s.findOwned(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	oldKey := ObjectKeyFromURL(file.FileURL)
	newKey := StorageKey(fileName)

	entry := &model.OperationLog{
		ID:     uuid.NewString(),
		UserID: userID,
		Op:     "update",
		FileID: fileID,
		OldKey: oldKey,
		NewKey: newKey,
	}
	if err := s.oplog.Begin(ctx, entry); err != nil {
		return nil, &DatabaseError{Op: "operation log", Err: err}
	}

	if err := s.store.RemoveObject(ctx, s.bucket, oldKey); err != nil {
		return nil, &StorageError{Op: "remove", Err: err}
	}
	if err := s.store.PutObject(ctx, s.bucket, newKey, bytes.NewReader(data), int64(len(data)), storage.PutOptions{
		ContentType: contentTypeOrDefault(mimeType),
	}); err != nil {
		log.Printf("media record %d references deleted object %s after failed replacement upload: %v", fileID, oldKey, err)
		return nil, &StorageError{Op: "put", Err: err}
	}

	duration := 0
	if file.Kind == model.KindVideo {
		duration = s.probeDuration(ctx, fileName, data)
	}

	newURL := s.publicURL(s.bucket, newKey)
	if err := s.repo.UpdateContent(ctx, userID, fileID, fileName, newURL, int64(len(data)), duration); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.reportOrphan(ctx, entry.ID, userID, newKey, "record vanished during update")
			return nil, ErrNotFound
		}
		return nil, &DatabaseError{Op: "update media record", Err: err}
	}

	file.FileName = fileName
	file.FileURL = newURL
	file.FileSize = int64(len(data))
	file.Duration = duration
	s.complete(ctx, entry.ID)
	return file, nil
}

func (s *GalleryService) findOwned(ctx context.Context, userID, fileID uint64) (*model.MediaFile, error) {
	file, err := s.repo.FindByID(ctx, userID, fileID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &DatabaseError{Op: "find media record", Err: err}
	}
	return file, nil
}

// probeDuration is best effort: duration never blocks an upload.
func (s *GalleryService) probeDuration(ctx context.Context, fileName string, data []byte) int {
	if s.probe == nil {
		return 0
	}
	duration, err := s.probe.Duration(ctx, data)
	if err != nil {
		log.Printf("duration probe failed for %s: %v", fileName, err)
		return 0
	}
	return duration
}

func (s *GalleryService) complete(ctx context.Context, opID string) {
	if err := s.oplog.Complete(ctx, opID); err != nil {
		log.Printf("operation log complete failed for %s: %v", opID, err)
	}
}

// reportOrphan logs a leaked stored object and, when MQ is configured,
// publishes it for the reconcile worker.
func (s *GalleryService) reportOrphan(ctx context.Context, opID string, userID uint64, object, reason string) {
	log.Printf("orphaned object %s/%s (op %s): %s", s.bucket, object, opID, reason)
	if s.orphans == nil {
		return
	}
	event := mq.OrphanEvent{
		OpID:       opID,
		UserID:     userID,
		Bucket:     s.bucket,
		Object:     object,
		Reason:     reason,
		OccurredAt: time.Now(),
	}
	if err := s.orphans.PublishOrphan(ctx, event); err != nil {
		log.Printf("orphan event publish failed for %s/%s: %v", s.bucket, object, err)
	}
}

func contentTypeOrDefault(mimeType string) string {
	if mimeType == "" {
		return "application/octet-stream"
	}
	return mimeType
}
