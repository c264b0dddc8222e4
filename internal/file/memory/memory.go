// Package memory holds in-memory implementations of the file domain's
// storage ports. They back the package tests and are handy for local
// experiments; production wiring uses the gorm/minio adapters.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/lk2023060901/cloud-drive-backend/internal/file/biz"
)

type folderKey struct {
	FolderID string
	UserID   string
}

// Store implements biz.FileRepo, biz.FolderRepo and
// biz.CollaborationRepo over process memory.
type Store struct {
	mu      sync.Mutex
	files   map[string]*biz.File
	folders []folderKey
	collabs []biz.Collaboration
}

func NewStore() *Store {
	return &Store{files: make(map[string]*biz.File)}
}

func (s *Store) Create(ctx context.Context, file *biz.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *file
	s.files[file.FileID] = &cp
	return nil
}

func (s *Store) Get(ctx context.Context, fileID, userID string) (*biz.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked(fileID, userID)
}

func (s *Store) Remove(ctx context.Context, fileID, userID string) (*biz.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := s.locked(fileID, userID)
	if err != nil {
		return nil, err
	}
	delete(s.files, fileID)
	return file, nil
}

func (s *Store) List(ctx context.Context, userID, folderID string) ([]*biz.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*biz.File
	for _, f := range s.files {
		if f.UserID == userID && !f.IsDeleted && f.FolderID == folderID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) ListOwned(ctx context.Context, userID string) ([]*biz.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*biz.File
	for _, f := range s.files {
		if f.UserID == userID && !f.IsDeleted {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) Search(ctx context.Context, userID, query string) ([]*biz.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lowered := strings.ToLower(query)
	var out []*biz.File
	for _, f := range s.files {
		if f.UserID != userID || f.IsDeleted {
			continue
		}
		if strings.Contains(strings.ToLower(f.Filename), lowered) ||
			containsTag(f.Tags, query) ||
			strings.Contains(strings.ToLower(f.Content), lowered) {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) SetDeleted(ctx context.Context, fileID, userID string) error {
	return s.update(fileID, userID, func(f *biz.File) { f.IsDeleted = true })
}

func (s *Store) UpdateFilename(ctx context.Context, fileID, userID, filename string) error {
	return s.update(fileID, userID, func(f *biz.File) { f.Filename = filename })
}

func (s *Store) UpdateFolder(ctx context.Context, fileID, userID, folderID string) error {
	return s.update(fileID, userID, func(f *biz.File) { f.FolderID = folderID })
}

func (s *Store) UpdateTags(ctx context.Context, fileID, userID string, tags []string) error {
	return s.update(fileID, userID, func(f *biz.File) { f.Tags = append([]string(nil), tags...) })
}

func (s *Store) SetFlag(ctx context.Context, fileID, userID string, flag biz.Flag) error {
	return s.update(fileID, userID, func(f *biz.File) {
		switch flag {
		case biz.FlagBookmarked:
			f.Bookmarked = true
		case biz.FlagFavorited:
			f.Favorited = true
		case biz.FlagLiked:
			f.Liked = true
		}
	})
}

func (s *Store) Exists(ctx context.Context, folderID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.folders {
		if k.FolderID == folderID && k.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// Create appends unconditionally; duplicate folder rows are tolerated
// just like the real store.
func (s *Store) CreateFolder(ctx context.Context, folderID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders = append(s.folders, folderKey{FolderID: folderID, UserID: userID})
	return nil
}

// FolderCount reports how many folder rows exist for the key.
func (s *Store) FolderCount(folderID, userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, k := range s.folders {
		if k.FolderID == folderID && k.UserID == userID {
			n++
		}
	}
	return n
}

// Collaborations returns a copy of the share log.
func (s *Store) Collaborations() []biz.Collaboration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]biz.Collaboration(nil), s.collabs...)
}

func (s *Store) update(fileID, userID string, apply func(*biz.File)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := s.locked(fileID, userID)
	if err != nil {
		return err
	}
	apply(file)
	s.files[fileID] = file
	return nil
}

func (s *Store) locked(fileID, userID string) (*biz.File, error) {
	f, ok := s.files[fileID]
	if !ok || f.UserID != userID {
		return nil, biz.ErrFileNotFound
	}
	cp := *f
	return &cp, nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Folders adapts Store to biz.FolderRepo, whose Create has a different
// signature than the file Create above.
type Folders struct{ *Store }

func (f Folders) Create(ctx context.Context, folderID, userID string) error {
	return f.CreateFolder(ctx, folderID, userID)
}

// Collabs adapts Store to biz.CollaborationRepo.
type Collabs struct{ *Store }

func (c Collabs) Create(ctx context.Context, collab *biz.Collaboration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collabs = append(c.collabs, *collab)
	return nil
}

// BlobStore implements biz.BlobStore over a byte map, with optional
// injected failures.
type BlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte

	PutErr    error
	GetErr    error
	DeleteErr error
}

func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string][]byte)}
}

func (b *BlobStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if b.PutErr != nil {
		return b.PutErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = data
	return nil
}

func (b *BlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if b.GetErr != nil {
		return nil, b.GetErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.blobs[key]
	if !ok {
		return nil, fmt.Errorf("no blob for key %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *BlobStore) Delete(ctx context.Context, key string) error {
	if b.DeleteErr != nil {
		return b.DeleteErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, key)
	return nil
}

// Has reports whether a blob exists for key.
func (b *BlobStore) Has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blobs[key]
	return ok
}
