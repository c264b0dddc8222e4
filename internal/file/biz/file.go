package biz

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccessLevelPrivate is the only access level assigned today. Files are
// always created private; sharing is tracked through the collaboration log.
const AccessLevelPrivate = "private"

// RootFolderID is the sentinel folder every file starts in. It has no
// folder row of its own.
const RootFolderID = "root"

// File is the metadata record for one stored blob. IsDeleted is an
// explicit flag rather than a store-level soft delete: a trashed file
// must stay downloadable until it is permanently deleted.
type File struct {
	FileID      string
	Filename    string
	UserID      string
	AccessLevel string
	UploadDate  time.Time
	IsDeleted   bool
	Tags        []string
	Bookmarked  bool
	Favorited   bool
	Liked       bool
	FolderID    string
	Content     string
}

// Collaboration is one append-only share event. A file may accumulate
// many rows, duplicates included; the log is history, not current state.
type Collaboration struct {
	FileID     string
	OwnerID    string
	SharedWith string
	SharedDate time.Time
}

// Flag names the three idempotent boolean marks a caller can set on a
// file. There is no unset operation.
type Flag string

const (
	FlagBookmarked Flag = "bookmarked"
	FlagFavorited  Flag = "favorited"
	FlagLiked      Flag = "liked"
)

// FileRepo is the metadata-store port. Every lookup and mutation is
// scoped by (fileID, userID); implementations return ErrFileNotFound
// when no row matches, which doubles as the ownership check.
type FileRepo interface {
	Create(ctx context.Context, file *File) error
	Get(ctx context.Context, fileID, userID string) (*File, error)
	// Remove atomically finds and deletes the record, returning it.
	Remove(ctx context.Context, fileID, userID string) (*File, error)
	// List returns the caller's non-deleted files in one folder.
	List(ctx context.Context, userID, folderID string) ([]*File, error)
	// ListOwned returns all of the caller's non-deleted files.
	ListOwned(ctx context.Context, userID string) ([]*File, error)
	// Search matches non-deleted files by case-insensitive filename
	// substring, exact tag membership, or case-insensitive content
	// substring.
	Search(ctx context.Context, userID, query string) ([]*File, error)
	SetDeleted(ctx context.Context, fileID, userID string) error
	UpdateFilename(ctx context.Context, fileID, userID, filename string) error
	UpdateFolder(ctx context.Context, fileID, userID, folderID string) error
	UpdateTags(ctx context.Context, fileID, userID string, tags []string) error
	SetFlag(ctx context.Context, fileID, userID string, flag Flag) error
}

// FolderRepo tracks folder existence per user. Folders have no name,
// hierarchy, or lifecycle beyond this row.
type FolderRepo interface {
	Exists(ctx context.Context, folderID, userID string) (bool, error)
	Create(ctx context.Context, folderID, userID string) error
}

// CollaborationRepo appends share events.
type CollaborationRepo interface {
	Create(ctx context.Context, collab *Collaboration) error
}

// BlobStore is the object-storage port, keyed by generated file id.
type BlobStore interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// TextExtractor converts uploaded content to searchable text. It never
// fails; unreadable input yields empty content.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, reader io.Reader) string
}

// ShareNotifier delivers a best-effort notification when a file is
// shared. Delivery failures never fail the share.
type ShareNotifier interface {
	NotifyShare(ctx context.Context, recipient, filename string) error
}

// FileUseCase orchestrates the file lifecycle across the metadata store,
// the blob store, and the collaboration log.
type FileUseCase struct {
	repo      FileRepo
	folders   FolderRepo
	collabs   CollaborationRepo
	blobs     BlobStore
	extractor TextExtractor
	notifier  ShareNotifier
	logger    *zap.Logger
}

func NewFileUseCase(
	repo FileRepo,
	folders FolderRepo,
	collabs CollaborationRepo,
	blobs BlobStore,
	extractor TextExtractor,
	notifier ShareNotifier,
	logger *zap.Logger,
) *FileUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileUseCase{
		repo:      repo,
		folders:   folders,
		collabs:   collabs,
		blobs:     blobs,
		extractor: extractor,
		notifier:  notifier,
		logger:    logger,
	}
}

// Upload stores the blob under a freshly generated id, extracts text
// content best-effort, and inserts the metadata record. The blob goes in
// first: if the put fails no metadata row is created, so a metadata row
// never references a missing blob. The reverse orphan (blob without
// metadata, after a failed insert) is tolerated and logged.
func (uc *FileUseCase) Upload(ctx context.Context, userID, folderID, filename string, reader io.Reader, contentType string) (*File, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	fileID := uuid.New().String()
	if folderID == "" {
		folderID = RootFolderID
	}

	if err := uc.blobs.Put(ctx, fileID, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBlobStore, err)
	}

	content := uc.extractor.Extract(ctx, filename, bytes.NewReader(data))

	file := &File{
		FileID:      fileID,
		Filename:    filename,
		UserID:      userID,
		AccessLevel: AccessLevelPrivate,
		UploadDate:  time.Now().UTC(),
		IsDeleted:   false,
		Tags:        []string{},
		FolderID:    folderID,
		Content:     content,
	}

	if err := uc.repo.Create(ctx, file); err != nil {
		uc.logger.Error("metadata insert failed after blob upload, blob is orphaned",
			zap.String("file_id", fileID), zap.Error(err))
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	uc.logger.Info("file uploaded",
		zap.String("file_id", fileID),
		zap.String("user_id", userID),
		zap.String("folder_id", folderID),
		zap.Int("size", len(data)))

	return file, nil
}

// Download returns the metadata record and a stream of the blob bytes.
// Soft-deleted files still download; only permanent deletion removes the
// blob.
func (uc *FileUseCase) Download(ctx context.Context, fileID, userID string) (*File, io.ReadCloser, error) {
	file, err := uc.repo.Get(ctx, fileID, userID)
	if err != nil {
		return nil, nil, err
	}

	body, err := uc.blobs.Get(ctx, fileID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrBlobStore, err)
	}

	return file, body, nil
}

// Details returns the metadata record for projection by the caller.
func (uc *FileUseCase) Details(ctx context.Context, fileID, userID string) (*File, error) {
	return uc.repo.Get(ctx, fileID, userID)
}

// SoftDelete marks the file deleted; the blob is retained.
func (uc *FileUseCase) SoftDelete(ctx context.Context, fileID, userID string) error {
	return uc.repo.SetDeleted(ctx, fileID, userID)
}

// PermanentDelete removes the metadata record and then the blob. When
// the blob delete fails the metadata is already gone; that inconsistency
// is surfaced as ErrBlobStore rather than hidden.
func (uc *FileUseCase) PermanentDelete(ctx context.Context, fileID, userID string) error {
	if _, err := uc.repo.Remove(ctx, fileID, userID); err != nil {
		return err
	}

	if err := uc.blobs.Delete(ctx, fileID); err != nil {
		uc.logger.Error("blob delete failed after metadata removal",
			zap.String("file_id", fileID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrBlobStore, err)
	}

	return nil
}

// Rename overwrites the display filename only.
func (uc *FileUseCase) Rename(ctx context.Context, fileID, userID, newFilename string) error {
	return uc.repo.UpdateFilename(ctx, fileID, userID, newFilename)
}

// Move reassigns the file to a folder, implicitly creating the folder
// row the first time that id is seen for this user. Two concurrent moves
// to the same new folder may both insert a row; duplicates are tolerated
// rather than fenced with a transaction.
func (uc *FileUseCase) Move(ctx context.Context, fileID, userID, newFolderID string) error {
	if newFolderID != RootFolderID {
		exists, err := uc.folders.Exists(ctx, newFolderID, userID)
		if err != nil {
			return fmt.Errorf("failed to check folder: %w", err)
		}
		if !exists {
			if err := uc.folders.Create(ctx, newFolderID, userID); err != nil {
				return fmt.Errorf("failed to create folder: %w", err)
			}
		}
	}

	return uc.repo.UpdateFolder(ctx, fileID, userID, newFolderID)
}

// AddTags unions the given tags into the file's tag set. Tags are never
// removed. The read-merge-write is not atomic; a concurrent AddTags may
// lose one writer's tags, the same class of race the folder creation
// above already tolerates.
func (uc *FileUseCase) AddTags(ctx context.Context, fileID, userID string, tags []string) error {
	file, err := uc.repo.Get(ctx, fileID, userID)
	if err != nil {
		return err
	}

	merged := file.Tags
	seen := make(map[string]bool, len(merged))
	for _, t := range merged {
		seen[t] = true
	}
	for _, t := range tags {
		if !seen[t] {
			merged = append(merged, t)
			seen[t] = true
		}
	}

	return uc.repo.UpdateTags(ctx, fileID, userID, merged)
}

// SetFlag idempotently sets one of the boolean marks to true.
func (uc *FileUseCase) SetFlag(ctx context.Context, fileID, userID string, flag Flag) error {
	return uc.repo.SetFlag(ctx, fileID, userID, flag)
}

// Share appends a collaboration record for the recipient and sends a
// best-effort notification. The file's own record is not touched; the
// collaboration log is the single representation of sharing.
func (uc *FileUseCase) Share(ctx context.Context, fileID, userID, email string) error {
	file, err := uc.repo.Get(ctx, fileID, userID)
	if err != nil {
		return err
	}

	collab := &Collaboration{
		FileID:     fileID,
		OwnerID:    userID,
		SharedWith: email,
		SharedDate: time.Now().UTC(),
	}
	if err := uc.collabs.Create(ctx, collab); err != nil {
		return fmt.Errorf("failed to record collaboration: %w", err)
	}

	if uc.notifier != nil {
		if err := uc.notifier.NotifyShare(ctx, email, file.Filename); err != nil {
			uc.logger.Warn("share notification failed",
				zap.String("file_id", fileID),
				zap.String("recipient", email),
				zap.Error(err))
		}
	}

	return nil
}

// Sync bulk-shares every non-deleted file of the caller with a group,
// one collaboration record per file. It is a one-way fan-out, not a
// bidirectional sync.
func (uc *FileUseCase) Sync(ctx context.Context, userID, group string) error {
	files, err := uc.repo.ListOwned(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	now := time.Now().UTC()
	for _, file := range files {
		collab := &Collaboration{
			FileID:     file.FileID,
			OwnerID:    userID,
			SharedWith: group,
			SharedDate: now,
		}
		if err := uc.collabs.Create(ctx, collab); err != nil {
			return fmt.Errorf("failed to record collaboration: %w", err)
		}
	}

	return nil
}

// List returns the caller's non-deleted files in one folder.
func (uc *FileUseCase) List(ctx context.Context, userID, folderID string) ([]*File, error) {
	if folderID == "" {
		folderID = RootFolderID
	}
	return uc.repo.List(ctx, userID, folderID)
}

// Search matches the caller's non-deleted files by filename, tag, or
// extracted content.
func (uc *FileUseCase) Search(ctx context.Context, userID, query string) ([]*File, error) {
	return uc.repo.Search(ctx, userID, query)
}
