package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"GoGallery/internal/mq"
	"GoGallery/internal/repo"
	"GoGallery/internal/storage"
	"GoGallery/model"
)

type memStore struct {
	objects    map[string][]byte
	calls      []string
	failPut    bool
	failRemove bool
	failCopy   bool
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts storage.PutOptions) error {
	s.calls = append(s.calls, "put "+object)
	if s.failPut {
		return errors.New("put failed")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.objects[object] = data
	return nil
}

func (s *memStore) RemoveObject(ctx context.Context, bucket, object string) error {
	s.calls = append(s.calls, "remove "+object)
	if s.failRemove {
		return errors.New("remove failed")
	}
	delete(s.objects, object)
	return nil
}

func (s *memStore) CopyObject(ctx context.Context, dest storage.CopyDest, src storage.CopySource) error {
	s.calls = append(s.calls, "copy "+src.Object+" "+dest.Object)
	if s.failCopy {
		return errors.New("copy failed")
	}
	data, ok := s.objects[src.Object]
	if !ok {
		return errors.New("source object missing")
	}
	s.objects[dest.Object] = data
	return nil
}

func (s *memStore) StatObject(ctx context.Context, bucket, object string) (storage.ObjectInfo, error) {
	data, ok := s.objects[object]
	if !ok {
		return storage.ObjectInfo{}, errors.New("object missing")
	}
	return storage.ObjectInfo{ObjectName: object, Size: int64(len(data))}, nil
}

type fakeOpLog struct {
	entries   []*model.OperationLog
	completed []string
}

func (o *fakeOpLog) Begin(ctx context.Context, entry *model.OperationLog) error {
	entry.State = model.OpStatePending
	o.entries = append(o.entries, entry)
	return nil
}

func (o *fakeOpLog) Complete(ctx context.Context, id string) error {
	o.completed = append(o.completed, id)
	return nil
}

type fakeFolders struct {
	sets   map[uint64]map[string]bool
	primed map[uint64]bool
}

func newFakeFolders() *fakeFolders {
	return &fakeFolders{sets: make(map[uint64]map[string]bool), primed: make(map[uint64]bool)}
}

func (f *fakeFolders) Members(ctx context.Context, userID uint64) ([]string, bool) {
	if !f.primed[userID] {
		return nil, false
	}
	out := make([]string, 0, len(f.sets[userID]))
	for folder := range f.sets[userID] {
		out = append(out, folder)
	}
	return out, true
}

func (f *fakeFolders) Prime(ctx context.Context, userID uint64, folders []string) error {
	set := make(map[string]bool, len(folders))
	for _, folder := range folders {
		set[folder] = true
	}
	f.sets[userID] = set
	f.primed[userID] = true
	return nil
}

func (f *fakeFolders) Add(ctx context.Context, userID uint64, folder string) error {
	if !f.primed[userID] {
		return nil
	}
	f.sets[userID][folder] = true
	return nil
}

func (f *fakeFolders) Invalidate(ctx context.Context, userID uint64) error {
	delete(f.sets, userID)
	f.primed[userID] = false
	return nil
}

type fakeProbe struct {
	duration int
	err      error
}

func (p *fakeProbe) Duration(ctx context.Context, data []byte) (int, error) {
	return p.duration, p.err
}

type fakePublisher struct {
	events []mq.OrphanEvent
}

func (p *fakePublisher) PublishOrphan(ctx context.Context, event mq.OrphanEvent) error {
	p.events = append(p.events, event)
	return nil
}

type fakeRepo struct {
	files      map[uint64]*model.MediaFile
	nextID     uint64
	failCreate bool

	// Simulate the record disappearing between the lookup and the write.
	vanishOnUpdateName    bool
	vanishOnUpdateContent bool
	vanishOnDelete        bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{files: make(map[uint64]*model.MediaFile)}
}

func (r *fakeRepo) Create(ctx context.Context, file *model.MediaFile) error {
	if r.failCreate {
		return errors.New("create failed")
	}
	r.nextID++
	file.ID = r.nextID
	clone := *file
	r.files[file.ID] = &clone
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, userID, fileID uint64) (*model.MediaFile, error) {
	file, ok := r.files[fileID]
	if !ok || file.UserID != userID {
		return nil, repo.ErrNotFound
	}
	clone := *file
	return &clone, nil
}

func (r *fakeRepo) ListByFolder(ctx context.Context, userID uint64, folder string) ([]model.MediaFile, error) {
	var out []model.MediaFile
	for _, file := range r.files {
		if file.UserID == userID && file.Folder == folder {
			out = append(out, *file)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListFolders(ctx context.Context, userID uint64) ([]string, error) {
	seen := make(map[string]bool)
	for _, file := range r.files {
		if file.UserID == userID {
			seen[file.Folder] = true
		}
	}
	out := make([]string, 0, len(seen))
	for folder := range seen {
		out = append(out, folder)
	}
	return out, nil
}

func (r *fakeRepo) UpdateName(ctx context.Context, userID, fileID uint64, fileName, fileURL string) error {
	file, ok := r.files[fileID]
	if r.vanishOnUpdateName || !ok || file.UserID != userID {
		return repo.ErrNotFound
	}
	file.FileName = fileName
	file.FileURL = fileURL
	return nil
}

func (r *fakeRepo) UpdateContent(ctx context.Context, userID, fileID uint64, fileName, fileURL string, fileSize int64, duration int) error {
	file, ok := r.files[fileID]
	if r.vanishOnUpdateContent || !ok || file.UserID != userID {
		return repo.ErrNotFound
	}
	file.FileName = fileName
	file.FileURL = fileURL
	file.FileSize = fileSize
	file.Duration = duration
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, userID, fileID uint64) error {
	file, ok := r.files[fileID]
	if r.vanishOnDelete || !ok || file.UserID != userID {
		return repo.ErrNotFound
	}
	delete(r.files, fileID)
	return nil
}

type galleryFixture struct {
	svc     *GalleryService
	repo    *fakeRepo
	store   *memStore
	oplog   *fakeOpLog
	folders *fakeFolders
	probe   *fakeProbe
	pub     *fakePublisher
}

func newGalleryFixture() *galleryFixture {
	f := &galleryFixture{
		repo:    newFakeRepo(),
		store:   newMemStore(),
		oplog:   &fakeOpLog{},
		folders: newFakeFolders(),
		probe:   &fakeProbe{},
		pub:     &fakePublisher{},
	}
	f.svc = &GalleryService{
		repo:    f.repo,
		store:   f.store,
		oplog:   f.oplog,
		folders: f.folders,
		probe:   f.probe,
		orphans: f.pub,
		bucket:  "gallery",
		publicURL: func(bucket, object string) string {
			return fmt.Sprintf("http://localhost:9000/%s/%s", bucket, object)
		},
	}
	return f
}

func TestUploadImage(t *testing.T) {
	f := newGalleryFixture()
	data := make([]byte, 1024)

	file, err := f.svc.Upload(context.Background(), 1, data, "photo.jpg", "image/jpeg", "/")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if file.Kind != model.KindImage {
		t.Errorf("kind = %v, want image", file.Kind)
	}
	if file.FileSize != 1024 {
		t.Errorf("size = %d, want 1024", file.FileSize)
	}
	if file.Folder != "/" {
		t.Errorf("folder = %q, want /", file.Folder)
	}
	key := ObjectKeyFromURL(file.FileURL)
	if _, ok := f.store.objects[key]; !ok {
		t.Errorf("object %q not stored", key)
	}
	if len(f.oplog.completed) != 1 {
		t.Errorf("expected 1 completed op, got %d", len(f.oplog.completed))
	}
}

func TestUploadVideoProbeFailureKeepsUpload(t *testing.T) {
	f := newGalleryFixture()
	f.probe.err = errors.New("moov atom not found")

	file, err := f.svc.Upload(context.Background(), 1, []byte("xx"), "clip.mp4", "video/mp4", "/")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if file.Kind != model.KindVideo {
		t.Errorf("kind = %v, want video", file.Kind)
	}
	if file.Duration != 0 {
		t.Errorf("duration = %d, want 0", file.Duration)
	}
}

func TestUploadVideoWithDuration(t *testing.T) {
	f := newGalleryFixture()
	f.probe.duration = 42

	file, err := f.svc.Upload(context.Background(), 1, []byte("xx"), "clip.mkv", "application/octet-stream", "/")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if file.Duration != 42 {
		t.Errorf("duration = %d, want 42", file.Duration)
	}
}

func TestUploadUnsupportedType(t *testing.T) {
	f := newGalleryFixture()

	_, err := f.svc.Upload(context.Background(), 1, []byte("xx"), "doc.pdf", "application/pdf", "/")
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("err = %v, want ErrUnsupportedFileType", err)
	}
	if len(f.store.objects) != 0 {
		t.Error("no object should be stored for rejected uploads")
	}
	if len(f.repo.files) != 0 {
		t.Error("no record should be created for rejected uploads")
	}
}

func TestUploadEmptyFile(t *testing.T) {
	f := newGalleryFixture()
	if _, err := f.svc.Upload(context.Background(), 1, nil, "photo.jpg", "image/jpeg", "/"); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("err = %v, want ErrEmptyFile", err)
	}
}

func TestUploadMetadataFailureReportsOrphan(t *testing.T) {
	f := newGalleryFixture()
	f.repo.failCreate = true

	_, err := f.svc.Upload(context.Background(), 1, []byte("xx"), "photo.jpg", "image/jpeg", "/")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(f.pub.events) != 1 {
		t.Fatalf("expected 1 orphan event, got %d", len(f.pub.events))
	}
	event := f.pub.events[0]
	if event.Bucket != "gallery" || !strings.HasSuffix(event.Object, "_photo.jpg") {
		t.Errorf("unexpected orphan event %+v", event)
	}
	// The stored object is left for the reconcile worker, not cleaned inline.
	if len(f.store.objects) != 1 {
		t.Errorf("orphaned object should remain in storage, got %d objects", len(f.store.objects))
	}
}

func TestListScopesToOwnerAndFolder(t *testing.T) {
	f := newGalleryFixture()
	ctx := context.Background()
	if _, err := f.svc.Upload(ctx, 1, []byte("a"), "a.jpg", "image/jpeg", "/"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Upload(ctx, 1, []byte("b"), "b.jpg", "image/jpeg", "/holiday/2024"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Upload(ctx, 2, []byte("c"), "c.jpg", "image/jpeg", "/"); err != nil {
		t.Fatal(err)
	}

	files, folders, err := f.svc.List(ctx, 1, "/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(files) != 1 || files[0].FileName != "a.jpg" {
		t.Fatalf("files = %+v, want only a.jpg", files)
	}
	if len(folders) != 1 || folders[0] != "holiday" {
		t.Fatalf("folders = %v, want [holiday]", folders)
	}

	files, _, err = f.svc.List(ctx, 2, "/")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].FileName != "c.jpg" {
		t.Fatalf("user 2 files = %+v, want only c.jpg", files)
	}
}

func TestDeleteNotFoundLeavesStorageAlone(t *testing.T) {
	f := newGalleryFixture()
	ctx := context.Background()
	file, err := f.svc.Upload(ctx, 1, []byte("a"), "a.jpg", "image/jpeg", "/")
	if err != nil {
		t.Fatal(err)
	}
	storeCalls := len(f.store.calls)

	if err := f.svc.Delete(ctx, 2, file.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for another user's file", err)
	}
	if err := f.svc.Delete(ctx, 1, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for missing id", err)
	}
	if len(f.store.calls) != storeCalls {
		t.Error("failed deletes must not touch storage")
	}
}

func TestDeleteRemovesObjectAndRecord(t *testing.T) {
	f := newGalleryFixture()
	ctx := context.Background()
	file, err := f.svc.Upload(ctx, 1, []byte("a"), "a.jpg", "image/jpeg", "/")
	if err != nil {
		t.Fatal(err)
	}
	key := ObjectKeyFromURL(file.FileURL)

	if err := f.svc.Delete(ctx, 1, file.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := f.store.objects[key]; ok {
		t.Error("object still in storage after delete")
	}
	if _, ok := f.repo.files[file.ID]; ok {
		t.Error("record still present after delete")
	}
}

func TestDeleteMultipleSkipsMissing(t *testing.T) {
	f := newGalleryFixture()
	ctx := context.Background()
	first, err := f.svc.Upload(ctx, 1, []byte("a"), "a.jpg", "image/jpeg", "/")
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.svc.Upload(ctx, 1, []byte("b"), "b.jpg", "image/jpeg", "/")
	if err != nil {
		t.Fatal(err)
	}

	if err := f.svc.DeleteMultiple(ctx, 1, []uint64{first.ID, 424242, second.ID}); err != nil {
		t.Fatalf("DeleteMultiple failed: %v", err)
	}
	if len(f.repo.files) != 0 {
		t.Errorf("expected all records gone, %d remain", len(f.repo.files))
	}
}

func TestRenameRejectsBadNameBeforeStorage(t *testing.T) {
	f := newGalleryFixture()
	ctx := context.Background()
	file, err := f.svc.Upload(ctx, 1, []byte("a"), "a.jpg", "image/jpeg", "/")
	if err != nil {
		t.Fatal(err)
	}
	storeCalls := len(f.store.calls)

	if _, err := f.svc.Rename(ctx, 1, file.ID, "bad/name.jpg"); !errors.Is(err, ErrInvalidFileName) {
		t.Fatalf("err = %v, want ErrInvalidFileName", err)
	}
	if len(f.store.calls) != storeCalls {
		t.Error("rejected rename must not touch storage")
	}
}

func TestRenamePreservesKeyPrefix(t *testing.T) {
	f := newGalleryFixture()
	ctx := context.Background()
	file, err := f.svc.Upload(ctx, 1, []byte("a"), "old.jpg", "image/jpeg", "/")
	if err != nil {
		t.Fatal(err)
	}
	oldKey := ObjectKeyFromURL(file.FileURL)
	prefix := oldKey[:strings.Index(oldKey, "_")]

	renamed, err := f.svc.Rename(ctx, 1, file.ID, "new.jpg")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	newKey := ObjectKeyFromURL(renamed.FileURL)
	if newKey != prefix+"_new.jpg" {
		t.Errorf("new key = %q, want %s_new.jpg", newKey, prefix)
	}
	if _, ok := f.store.objects[oldKey]; ok {
		t.Error("old object still present after rename")
	}
	if _, ok := f.store.objects[newKey]; !ok {
		t.Error("new object missing after rename")
	}
	if f.repo.files[file.ID].FileName != "new.jpg" {
		t.Error("record name not updated")
	}
}

func TestRenameCopyFailureAborts(t *testing.T) {
	f := newGalleryFixture()
	ctx := context.Background()
	file, err := f.svc.Upload(ctx, 1, []byte("a"), "old.jpg", "image/jpeg", "/")
	if err != nil {
		t.Fatal(err)
	}
	oldKey := ObjectKeyFromURL(file.FileURL)
	f.store.failCopy = true

	if _, err := f.svc.Rename(ctx, 1, file.ID, "new.jpg"); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := f.store.objects[oldKey]; !ok {
		t.Error("old object must survive a failed copy")
	}
	if f.repo.files[file.ID].FileName != "old.jpg" {
		t.Error("record must be untouched after a failed copy")
	}
}

func TestUpdateReplacesContent(t *testing.T) {
	f := newGalleryFixture()
	ctx := context.Background()
	file, err := f.svc.Upload(ctx, 1, []byte("aa"), "clip.mp4", "video/mp4", "/")
	if err != nil {
		t.Fatal(err)
	}
	oldKey := ObjectKeyFromURL(file.FileURL)
	f.probe.duration = 7

	updated, err := f.svc.Update(ctx, 1, file.ID, []byte("bbbb"), "clip2.mp4", "video/mp4")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if _, ok := f.store.objects[oldKey]; ok {
		t.Error("old object still present after update")
	}
	if updated.FileSize != 4 || updated.Duration != 7 {
		t.Errorf("updated = size %d duration %d, want 4 and 7", updated.FileSize, updated.Duration)
	}
	rec := f.repo.files[file.ID]
	if rec.FileSize != 4 || rec.FileName != "clip2.mp4" {
		t.Errorf("record not updated: %+v", rec)
	}
}

func TestRenameRecordVanishedReportsOrphanNewKey(t *testing.T) {
	f := newGalleryFixture()
	ctx := context.Background()
	file, err := f.svc.Upload(ctx, 1, []byte("a"), "old.jpg", "image/jpeg", "/")
	if err != nil {
		t.Fatal(err)
	}
	f.repo.vanishOnUpdateName = true

	if _, err := f.svc.Rename(ctx, 1, file.ID, "new.jpg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(f.pub.events) != 1 {
		t.Fatalf("expected 1 orphan event, got %d", len(f.pub.events))
	}
	event := f.pub.events[0]
	if !strings.HasSuffix(event.Object, "_new.jpg") {
		t.Errorf("orphan object = %q, want the new key", event.Object)
	}
	if !strings.Contains(event.Reason, "vanished") {
		t.Errorf("orphan reason = %q, want a vanished-record reason", event.Reason)
	}
}

func TestRenameOldDeleteFailureReportsOrphanOldKey(t *testing.T) {
	f := newGalleryFixture()
	ctx := context.Background()
	file, err := f.svc.Upload(ctx, 1, []byte("a"), "old.jpg", "image/jpeg", "/")
	if err != nil {
		t.Fatal(err)
	}
	oldKey := ObjectKeyFromURL(file.FileURL)
	f.store.failRemove = true

	renamed, err := f.svc.Rename(ctx, 1, file.ID, "new.jpg")
	if err != nil {
		t.Fatalf("Rename must still succeed when only the old-key delete fails: %v", err)
	}
	if f.repo.files[file.ID].FileName != "new.jpg" {
		t.Error("record must carry the new name")
	}
	newKey := ObjectKeyFromURL(renamed.FileURL)
	if _, ok := f.store.objects[newKey]; !ok {
		t.Error("new object missing after rename")
	}
	if len(f.pub.events) != 1 {
		t.Fatalf("expected 1 orphan event, got %d", len(f.pub.events))
	}
	event := f.pub.events[0]
	if event.Object != oldKey {
		t.Errorf("orphan object = %q, want old key %q", event.Object, oldKey)
	}
	if !strings.Contains(event.Reason, "delete failed") {
		t.Errorf("orphan reason = %q, want a delete-failed reason", event.Reason)
	}
}

func TestUpdateRecordVanishedReportsOrphanNewKey(t *testing.T) {
	f := newGalleryFixture()
	ctx := context.Background()
	file, err := f.svc.Upload(ctx, 1, []byte("aa"), "photo.jpg", "image/jpeg", "/")
	if err != nil {
		t.Fatal(err)
	}
	f.repo.vanishOnUpdateContent = true

	if _, err := f.svc.Update(ctx, 1, file.ID, []byte("bb"), "photo2.jpg", "image/jpeg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(f.pub.events) != 1 {
		t.Fatalf("expected 1 orphan event, got %d", len(f.pub.events))
	}
	event := f.pub.events[0]
	if !strings.HasSuffix(event.Object, "_photo2.jpg") {
		t.Errorf("orphan object = %q, want the replacement key", event.Object)
	}
	if !strings.Contains(event.Reason, "vanished") {
		t.Errorf("orphan reason = %q, want a vanished-record reason", event.Reason)
	}
}

func TestDeleteRecordVanishedSurfacesNotFound(t *testing.T) {
	f := newGalleryFixture()
	ctx := context.Background()
	file, err := f.svc.Upload(ctx, 1, []byte("a"), "a.jpg", "image/jpeg", "/")
	if err != nil {
		t.Fatal(err)
	}
	key := ObjectKeyFromURL(file.FileURL)
	f.repo.vanishOnDelete = true

	if err := f.svc.Delete(ctx, 1, file.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	// The object was removed before the record vanished; nothing is
	// orphaned, so no event is published.
	if _, ok := f.store.objects[key]; ok {
		t.Error("object should be gone after the storage remove")
	}
	if len(f.pub.events) != 0 {
		t.Errorf("expected no orphan events, got %d", len(f.pub.events))
	}
}
