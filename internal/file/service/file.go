package service

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/cloud-drive-backend/internal/conf"
	"github.com/lk2023060901/cloud-drive-backend/internal/file/biz"
	"github.com/lk2023060901/cloud-drive-backend/internal/pkg/response"
	"github.com/lk2023060901/cloud-drive-backend/internal/pkg/sanitize"
	"go.uber.org/zap"
)

// FileService exposes the file lifecycle over HTTP.
type FileService struct {
	uc     *biz.FileUseCase
	upload conf.UploadConfig
	logger *zap.Logger
}

func NewFileService(uc *biz.FileUseCase, upload conf.UploadConfig, logger *zap.Logger) *FileService {
	return &FileService{
		uc:     uc,
		upload: upload,
		logger: logger,
	}
}

// fileSummary is the projection used by list and search. Details adds the
// tag set and flags; the extracted content is never exposed.
type fileSummary struct {
	FileID     string    `json:"file_id"`
	Filename   string    `json:"filename"`
	UploadDate time.Time `json:"upload_date"`
}

type fileDetails struct {
	FileID     string    `json:"file_id"`
	Filename   string    `json:"filename"`
	UploadDate time.Time `json:"upload_date"`
	Tags       []string  `json:"tags"`
	Bookmarked bool      `json:"bookmarked"`
	Favorited  bool      `json:"favorited"`
	Liked      bool      `json:"liked"`
	FolderID   string    `json:"folder_id"`
}

func (s *FileService) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "No file part")
		return
	}
	if fileHeader.Filename == "" {
		response.BadRequest(c, "No selected file")
		return
	}
	if !s.upload.ExtensionAllowed(fileHeader.Filename) {
		response.BadRequest(c, "File type not allowed")
		return
	}
	if max := s.upload.MaxSizeBytes(); max > 0 && fileHeader.Size > max {
		response.Error(c, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	userID := c.Query("user_id")
	folderID := c.PostForm("folder_id")
	filename := sanitize.Filename(fileHeader.Filename)

	src, err := fileHeader.Open()
	if err != nil {
		response.InternalError(c, "Error reading file")
		return
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	file, err := s.uc.Upload(c.Request.Context(), userID, folderID, filename, src, contentType)
	if err != nil {
		s.logger.Error("upload failed", zap.String("user_id", userID), zap.Error(err))
		response.InternalError(c, "Error uploading file")
		return
	}

	response.OK(c, "File uploaded successfully", gin.H{"file_id": file.FileID})
}

func (s *FileService) Download(c *gin.Context) {
	fileID := c.Param("file_id")
	userID := c.Query("user_id")

	file, body, err := s.uc.Download(c.Request.Context(), fileID, userID)
	if err != nil {
		if errors.Is(err, biz.ErrFileNotFound) {
			response.NotFound(c, "File not found")
			return
		}
		s.logger.Error("download failed", zap.String("file_id", fileID), zap.Error(err))
		response.InternalError(c, "Error downloading file")
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Content-Type", "application/octet-stream")
	c.Status(200)
	if _, err := io.Copy(c.Writer, body); err != nil {
		s.logger.Warn("download stream interrupted", zap.String("file_id", fileID), zap.Error(err))
	}
}

func (s *FileService) Delete(c *gin.Context) {
	err := s.uc.SoftDelete(c.Request.Context(), c.Param("file_id"), c.Query("user_id"))
	if err != nil {
		s.respondMutationError(c, err)
		return
	}
	response.OK(c, "File moved to trash")
}

func (s *FileService) PermanentDelete(c *gin.Context) {
	fileID := c.Param("file_id")
	err := s.uc.PermanentDelete(c.Request.Context(), fileID, c.Query("user_id"))
	if err != nil {
		if errors.Is(err, biz.ErrFileNotFound) {
			response.NotFound(c, "File not found")
			return
		}
		// Metadata is gone but the blob delete failed; report rather
		// than hide the inconsistency.
		s.logger.Error("permanent delete failed", zap.String("file_id", fileID), zap.Error(err))
		response.InternalError(c, "Error deleting file from storage")
		return
	}
	response.OK(c, "File permanently deleted")
}

type renameRequest struct {
	NewFilename string `json:"new_filename"`
	UserID      string `json:"user_id"`
}

func (s *FileService) Rename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.NewFilename == "" {
		response.BadRequest(c, "New filename is required")
		return
	}

	err := s.uc.Rename(c.Request.Context(), c.Param("file_id"), req.UserID, req.NewFilename)
	if err != nil {
		s.respondMutationError(c, err)
		return
	}
	response.OK(c, "File renamed successfully")
}

type moveRequest struct {
	NewFolderID string `json:"new_folder_id"`
	UserID      string `json:"user_id"`
}

func (s *FileService) Move(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.NewFolderID == "" {
		response.BadRequest(c, "New folder ID is required")
		return
	}

	err := s.uc.Move(c.Request.Context(), c.Param("file_id"), req.UserID, req.NewFolderID)
	if err != nil {
		s.respondMutationError(c, err)
		return
	}
	response.OK(c, "File moved successfully")
}

func (s *FileService) Details(c *gin.Context) {
	file, err := s.uc.Details(c.Request.Context(), c.Param("file_id"), c.Query("user_id"))
	if err != nil {
		s.respondMutationError(c, err)
		return
	}

	response.JSON(c, fileDetails{
		FileID:     file.FileID,
		Filename:   file.Filename,
		UploadDate: file.UploadDate,
		Tags:       file.Tags,
		Bookmarked: file.Bookmarked,
		Favorited:  file.Favorited,
		Liked:      file.Liked,
		FolderID:   file.FolderID,
	})
}

type tagRequest struct {
	Tags []string `json:"tags"`
}

func (s *FileService) Tag(c *gin.Context) {
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Tags are required")
		return
	}

	err := s.uc.AddTags(c.Request.Context(), c.Param("file_id"), c.Query("user_id"), req.Tags)
	if err != nil {
		s.respondMutationError(c, err)
		return
	}
	response.OK(c, "Tags added successfully")
}

func (s *FileService) Bookmark(c *gin.Context) {
	s.setFlag(c, biz.FlagBookmarked, "File bookmarked")
}

func (s *FileService) Favorite(c *gin.Context) {
	s.setFlag(c, biz.FlagFavorited, "File favorited")
}

func (s *FileService) Like(c *gin.Context) {
	s.setFlag(c, biz.FlagLiked, "File liked")
}

func (s *FileService) setFlag(c *gin.Context, flag biz.Flag, message string) {
	err := s.uc.SetFlag(c.Request.Context(), c.Param("file_id"), c.Query("user_id"), flag)
	if err != nil {
		s.respondMutationError(c, err)
		return
	}
	response.OK(c, message)
}

type shareRequest struct {
	Email string `json:"email"`
}

func (s *FileService) Share(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		response.BadRequest(c, "Email is required")
		return
	}

	err := s.uc.Share(c.Request.Context(), c.Param("file_id"), c.Query("user_id"), req.Email)
	if err != nil {
		s.respondMutationError(c, err)
		return
	}
	response.OK(c, fmt.Sprintf("File shared with %s", req.Email))
}

type syncRequest struct {
	Group string `json:"group"`
}

func (s *FileService) Sync(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Group == "" {
		response.BadRequest(c, "Group is required")
		return
	}

	userID := c.Query("user_id")
	if err := s.uc.Sync(c.Request.Context(), userID, req.Group); err != nil {
		s.logger.Error("sync failed", zap.String("user_id", userID), zap.Error(err))
		response.InternalError(c, "Error syncing files")
		return
	}
	response.OK(c, fmt.Sprintf("Files synced with %s", req.Group))
}

func (s *FileService) List(c *gin.Context) {
	userID := c.Query("user_id")
	folderID := c.DefaultQuery("folder_id", biz.RootFolderID)

	files, err := s.uc.List(c.Request.Context(), userID, folderID)
	if err != nil {
		s.logger.Error("list failed", zap.String("user_id", userID), zap.Error(err))
		response.InternalError(c, "Error listing files")
		return
	}
	response.JSON(c, toSummaries(files))
}

func (s *FileService) Search(c *gin.Context) {
	userID := c.Query("user_id")
	query := c.Query("q")

	files, err := s.uc.Search(c.Request.Context(), userID, query)
	if err != nil {
		s.logger.Error("search failed", zap.String("user_id", userID), zap.Error(err))
		response.InternalError(c, "Error searching files")
		return
	}
	response.JSON(c, toSummaries(files))
}

// respondMutationError maps the shared lookup-then-mutate failure modes.
func (s *FileService) respondMutationError(c *gin.Context, err error) {
	if errors.Is(err, biz.ErrFileNotFound) {
		response.NotFound(c, "File not found")
		return
	}
	s.logger.Error("file operation failed", zap.String("path", c.FullPath()), zap.Error(err))
	response.InternalError(c, "Internal server error")
}

func toSummaries(files []*biz.File) []fileSummary {
	out := make([]fileSummary, len(files))
	for i, f := range files {
		out[i] = fileSummary{
			FileID:     f.FileID,
			Filename:   f.Filename,
			UploadDate: f.UploadDate,
		}
	}
	return out
}

func (s *FileService) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/upload", s.Upload)
	r.GET("/download/:file_id", s.Download)
	r.DELETE("/delete/:file_id", s.Delete)
	r.PUT("/rename/:file_id", s.Rename)
	r.PUT("/move/:file_id", s.Move)
	r.GET("/details/:file_id", s.Details)
	r.DELETE("/permanent_delete/:file_id", s.PermanentDelete)
	r.POST("/tag/:file_id", s.Tag)
	r.POST("/bookmark/:file_id", s.Bookmark)
	r.POST("/favorite/:file_id", s.Favorite)
	r.POST("/like/:file_id", s.Like)
	r.POST("/share/:file_id", s.Share)
	r.GET("/files", s.List)
	r.GET("/search", s.Search)
	r.POST("/sync", s.Sync)
}
