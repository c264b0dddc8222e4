package data

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lk2023060901/cloud-drive-backend/internal/file/biz"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagsJSON stores the tag set as a JSONB array.
type TagsJSON []string

func (j *TagsJSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

func (j TagsJSON) Value() (driver.Value, error) {
	if j == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(j)
}

// FilePO represents the database model. IsDeleted is a plain column, not
// gorm's soft delete: trashed rows must stay visible to the download path.
type FilePO struct {
	FileID      string    `gorm:"type:uuid;primarykey;column:file_id"`
	Filename    string    `gorm:"size:255;not null"`
	UserID      string    `gorm:"size:255;not null;index:idx_files_user"`
	AccessLevel string    `gorm:"size:32;not null;default:private"`
	UploadDate  time.Time `gorm:"not null"`
	IsDeleted   bool      `gorm:"not null;default:false"`
	Tags        TagsJSON  `gorm:"type:jsonb;not null;default:'[]'"`
	Bookmarked  bool      `gorm:"not null;default:false"`
	Favorited   bool      `gorm:"not null;default:false"`
	Liked       bool      `gorm:"not null;default:false"`
	FolderID    string    `gorm:"size:255;not null;default:root;index:idx_files_user_folder"`
	Content     string    `gorm:"type:text"`
}

func (FilePO) TableName() string {
	return "files"
}

// FileRepo implements biz.FileRepo on GORM/Postgres.
type FileRepo struct {
	db *gorm.DB
}

func NewFileRepo(db *gorm.DB) biz.FileRepo {
	return &FileRepo{db: db}
}

func (r *FileRepo) Create(ctx context.Context, file *biz.File) error {
	po := toPO(file)
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return fmt.Errorf("failed to insert file record: %w", err)
	}
	return nil
}

func (r *FileRepo) Get(ctx context.Context, fileID, userID string) (*biz.File, error) {
	var po FilePO
	err := r.db.WithContext(ctx).
		Where("file_id = ? AND user_id = ?", fileID, userID).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to query file record: %w", err)
	}
	return toDomain(&po), nil
}

func (r *FileRepo) Remove(ctx context.Context, fileID, userID string) (*biz.File, error) {
	var po FilePO
	result := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("file_id = ? AND user_id = ?", fileID, userID).
		Delete(&po)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to delete file record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, biz.ErrFileNotFound
	}
	return toDomain(&po), nil
}

func (r *FileRepo) List(ctx context.Context, userID, folderID string) ([]*biz.File, error) {
	var pos []FilePO
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = false AND folder_id = ?", userID, folderID).
		Find(&pos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list file records: %w", err)
	}
	return toDomainSlice(pos), nil
}

func (r *FileRepo) ListOwned(ctx context.Context, userID string) ([]*biz.File, error) {
	var pos []FilePO
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = false", userID).
		Find(&pos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list file records: %w", err)
	}
	return toDomainSlice(pos), nil
}

func (r *FileRepo) Search(ctx context.Context, userID, query string) ([]*biz.File, error) {
	tagMatch, err := json.Marshal([]string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode tag filter: %w", err)
	}

	pattern := "%" + query + "%"
	var pos []FilePO
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = false", userID).
		Where("filename ILIKE ? OR content ILIKE ? OR tags @> ?", pattern, pattern, string(tagMatch)).
		Find(&pos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search file records: %w", err)
	}
	return toDomainSlice(pos), nil
}

func (r *FileRepo) SetDeleted(ctx context.Context, fileID, userID string) error {
	return r.updateColumn(ctx, fileID, userID, "is_deleted", true)
}

func (r *FileRepo) UpdateFilename(ctx context.Context, fileID, userID, filename string) error {
	return r.updateColumn(ctx, fileID, userID, "filename", filename)
}

func (r *FileRepo) UpdateFolder(ctx context.Context, fileID, userID, folderID string) error {
	return r.updateColumn(ctx, fileID, userID, "folder_id", folderID)
}

func (r *FileRepo) UpdateTags(ctx context.Context, fileID, userID string, tags []string) error {
	return r.updateColumn(ctx, fileID, userID, "tags", TagsJSON(tags))
}

func (r *FileRepo) SetFlag(ctx context.Context, fileID, userID string, flag biz.Flag) error {
	switch flag {
	case biz.FlagBookmarked, biz.FlagFavorited, biz.FlagLiked:
	default:
		return fmt.Errorf("unknown file flag: %s", flag)
	}
	return r.updateColumn(ctx, fileID, userID, string(flag), true)
}

// updateColumn applies a single conditional field set; atomicity is the
// store's own single-row update semantics.
func (r *FileRepo) updateColumn(ctx context.Context, fileID, userID, column string, value interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&FilePO{}).
		Where("file_id = ? AND user_id = ?", fileID, userID).
		Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("failed to update file record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrFileNotFound
	}
	return nil
}

func toPO(file *biz.File) *FilePO {
	return &FilePO{
		FileID:      file.FileID,
		Filename:    file.Filename,
		UserID:      file.UserID,
		AccessLevel: file.AccessLevel,
		UploadDate:  file.UploadDate,
		IsDeleted:   file.IsDeleted,
		Tags:        TagsJSON(file.Tags),
		Bookmarked:  file.Bookmarked,
		Favorited:   file.Favorited,
		Liked:       file.Liked,
		FolderID:    file.FolderID,
		Content:     file.Content,
	}
}

func toDomain(po *FilePO) *biz.File {
	return &biz.File{
		FileID:      po.FileID,
		Filename:    po.Filename,
		UserID:      po.UserID,
		AccessLevel: po.AccessLevel,
		UploadDate:  po.UploadDate,
		IsDeleted:   po.IsDeleted,
		Tags:        []string(po.Tags),
		Bookmarked:  po.Bookmarked,
		Favorited:   po.Favorited,
		Liked:       po.Liked,
		FolderID:    po.FolderID,
		Content:     po.Content,
	}
}

func toDomainSlice(pos []FilePO) []*biz.File {
	files := make([]*biz.File, len(pos))
	for i := range pos {
		files[i] = toDomain(&pos[i])
	}
	return files
}
