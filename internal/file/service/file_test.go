package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/cloud-drive-backend/internal/conf"
	"github.com/lk2023060901/cloud-drive-backend/internal/file/biz"
	"github.com/lk2023060901/cloud-drive-backend/internal/file/memory"
	"github.com/lk2023060901/cloud-drive-backend/internal/pkg/sanitize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type txtExtractor struct{}

func (txtExtractor) Extract(_ context.Context, filename string, reader io.Reader) string {
	if !strings.HasSuffix(filename, ".txt") {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return string(data)
}

type testEnv struct {
	router *gin.Engine
	store  *memory.Store
	blobs  *memory.BlobStore
}

func newTestEnv(t *testing.T, upload conf.UploadConfig) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	blobs := memory.NewBlobStore()
	uc := biz.NewFileUseCase(
		store,
		memory.Folders{Store: store},
		memory.Collabs{Store: store},
		blobs,
		txtExtractor{},
		nil,
		zap.NewNop(),
	)

	svc := NewFileService(uc, upload, zap.NewNop())
	router := gin.New()
	svc.RegisterRoutes(router.Group("/"))

	return &testEnv{router: router, store: store, blobs: blobs}
}

func (e *testEnv) do(t *testing.T, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(t *testing.T, method, target string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return e.do(t, method, target, bytes.NewReader(data), "application/json")
}

func multipartUpload(t *testing.T, filename, content, folderID string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", "text/plain")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	if folderID != "" {
		require.NoError(t, w.WriteField("folder_id", folderID))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (e *testEnv) mustUpload(t *testing.T, userID, filename, content string) string {
	t.Helper()
	body, contentType := multipartUpload(t, filename, content, "")
	w := e.do(t, http.MethodPost, "/upload?user_id="+userID, body, contentType)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		FileID string `json:"file_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.FileID)
	return resp.FileID
}

func TestUploadWithoutFilePart(t *testing.T) {
	e := newTestEnv(t, conf.UploadConfig{})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("folder_id", "root"))
	require.NoError(t, w.Close())

	resp := e.do(t, http.MethodPost, "/upload?user_id=alice", &buf, w.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "No file part")
}

func TestUploadWithEmptyFilename(t *testing.T) {
	e := newTestEnv(t, conf.UploadConfig{})

	body, contentType := multipartUpload(t, "", "content", "")
	resp := e.do(t, http.MethodPost, "/upload?user_id=alice", body, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUploadDisallowedExtension(t *testing.T) {
	e := newTestEnv(t, conf.UploadConfig{
		LimitExtensions:   true,
		AllowedExtensions: []string{"txt"},
	})

	body, contentType := multipartUpload(t, "payload.exe", "MZ", "")
	resp := e.do(t, http.MethodPost, "/upload?user_id=alice", body, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "File type not allowed")
}

func TestUploadExceedsSizeCap(t *testing.T) {
	e := newTestEnv(t, conf.UploadConfig{MaxSizeMB: 1})

	body, contentType := multipartUpload(t, "big.txt", strings.Repeat("a", 2<<20), "")
	resp := e.do(t, http.MethodPost, "/upload?user_id=alice", body, contentType)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	assert.Contains(t, resp.Body.String(), "File too large")

	w := e.do(t, http.MethodGet, "/files?user_id=alice", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	// Within the cap the upload goes through.
	body, contentType = multipartUpload(t, "small.txt", "fits", "")
	resp = e.do(t, http.MethodPost, "/upload?user_id=alice", body, contentType)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	e := newTestEnv(t, conf.UploadConfig{})

	rawName := "my notes/../weekly report.txt"
	fileID := e.mustUpload(t, "alice", rawName, "line one\nline two")

	w := e.do(t, http.MethodGet, "/download/"+fileID+"?user_id=alice", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "line one\nline two", w.Body.String())

	wantName := sanitize.Filename(rawName)
	assert.Contains(t, w.Header().Get("Content-Disposition"), wantName)
}

func TestDownloadBlobFailure(t *testing.T) {
	e := newTestEnv(t, conf.UploadConfig{})
	fileID := e.mustUpload(t, "alice", "a.txt", "x")
	e.blobs.GetErr = fmt.Errorf("connection reset")

	w := e.do(t, http.MethodGet, "/download/"+fileID+"?user_id=alice", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Error downloading file")

	// The metadata record is untouched.
	w = e.do(t, http.MethodGet, "/details/"+fileID+"?user_id=alice", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCrossUserIsolation(t *testing.T) {
	e := newTestEnv(t, conf.UploadConfig{})
	fileID := e.mustUpload(t, "alice", "secret.txt", "for alice only")

	cases := []struct {
		method string
		target string
		body   interface{}
	}{
		{http.MethodGet, "/download/" + fileID + "?user_id=bob", nil},
		{http.MethodGet, "/details/" + fileID + "?user_id=bob", nil},
		{http.MethodDelete, "/delete/" + fileID + "?user_id=bob", nil},
		{http.MethodDelete, "/permanent_delete/" + fileID + "?user_id=bob", nil},
		{http.MethodPut, "/rename/" + fileID, map[string]string{"new_filename": "x", "user_id": "bob"}},
		{http.MethodPut, "/move/" + fileID, map[string]string{"new_folder_id": "x", "user_id": "bob"}},
		{http.MethodPost, "/tag/" + fileID + "?user_id=bob", map[string][]string{"tags": {"x"}}},
		{http.MethodPost, "/bookmark/" + fileID + "?user_id=bob", nil},
		{http.MethodPost, "/share/" + fileID + "?user_id=bob", map[string]string{"email": "b@c.d"}},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			var w *httptest.ResponseRecorder
			if tc.body != nil {
				w = e.doJSON(t, tc.method, tc.target, tc.body)
			} else {
				w = e.do(t, tc.method, tc.target, nil, "")
			}
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestSoftDeleteHidesFromListingsButNotDownload(t *testing.T) {
	e := newTestEnv(t, conf.UploadConfig{})
	fileID := e.mustUpload(t, "alice", "trash-me.txt", "still retrievable")

	w := e.do(t, http.MethodDelete, "/delete/"+fileID+"?user_id=alice", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "File moved to trash")

	w = e.do(t, http.MethodGet, "/files?user_id=alice", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	w = e.do(t, http.MethodGet, "/search?user_id=alice&q=trash", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	w = e.do(t, http.MethodGet, "/download/"+fileID+"?user_id=alice", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "still retrievable", w.Body.String())
}

func TestPermanentDelete(t *testing.T) {
	e := newTestEnv(t, conf.UploadConfig{})
	fileID := e.mustUpload(t, "alice", "doomed.txt", "bye")

	w := e.do(t, http.MethodDelete, "/permanent_delete/"+fileID+"?user_id=alice", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/details/"+fileID+"?user_id=alice", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodGet, "/download/"+fileID+"?user_id=alice", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.False(t, e.blobs.Has(fileID))
}

func TestPermanentDeleteBlobFailure(t *testing.T) {
	e := newTestEnv(t, conf.UploadConfig{})
	fileID := e.mustUpload(t, "alice", "doomed.txt", "bye")
	e.blobs.DeleteErr = fmt.Errorf("storage offline")

	w := e.do(t, http.MethodDelete, "/permanent_delete/"+fileID+"?user_id=alice", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRenameValidation(t *testing.T) {
	e := newTestEnv(t, conf.UploadConfig{})
	fileID := e.mustUpload(t, "alice", "draft.txt", "x")

	w := e.doJSON(t, http.MethodPut, "/rename/"+fileID, map[string]string{"user_id": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "New filename is required")

	w = e.doJSON(t, http.MethodPut, "/rename/"+fileID, map[string]string{
		"new_filename": "final.txt", "user_id": "alice",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMoveCreatesFolderAndRelists(t *testing.T) {
	e := newTestEnv(t, conf.UploadConfig{})
	fileID := e.mustUpload(t, "alice", "a.txt", "x")

	w := e.doJSON(t, http.MethodPut, "/move/"+fileID, map[string]string{"user_id": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.doJSON(t, http.MethodPut, "/move/"+fileID, map[string]string{
		"new_folder_id": "projects", "user_id": "alice",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, e.store.FolderCount("projects", "alice"))

	w = e.do(t, http.MethodGet, "/files?user_id=alice&folder_id=projects", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var listed []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, fileID, listed[0]["file_id"])

	// Old folder no longer lists it.
	w = e.do(t, http.MethodGet, "/files?user_id=alice", nil, "")
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestDetailsProjection(t *testing.T) {
	e := newTestEnv(t, conf.UploadConfig{})
	fileID := e.mustUpload(t, "alice", "report.txt", "confidential body text")

	w := e.doJSON(t, http.MethodPost, "/tag/"+fileID+"?user_id=alice", map[string][]string{
		"tags": {"work", "work", "q3"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/favorite/"+fileID+"?user_id=alice", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/details/"+fileID+"?user_id=alice", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var details map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))

	assert.Equal(t, fileID, details["file_id"])
	assert.Equal(t, "report.txt", details["filename"])
	assert.ElementsMatch(t, []interface{}{"work", "q3"}, details["tags"])
	assert.Equal(t, true, details["favorited"])
	assert.Equal(t, false, details["bookmarked"])
	assert.Equal(t, "root", details["folder_id"])

	// The extracted content is never exposed.
	_, hasContent := details["content"]
	assert.False(t, hasContent)
}

func TestSearchRoutes(t *testing.T) {
	e := newTestEnv(t, conf.UploadConfig{})
	byName := e.mustUpload(t, "alice", "quarterly-report.txt", "nothing")
	byContent := e.mustUpload(t, "alice", "misc.txt", "the REPORT is due")
	e.mustUpload(t, "alice", "unrelated.txt", "nope")

	w := e.do(t, http.MethodGet, "/search?user_id=alice&q=report", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var results []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 2)

	ids := map[string]bool{}
	for _, r := range results {
		ids[r["file_id"].(string)] = true
	}
	assert.True(t, ids[byName])
	assert.True(t, ids[byContent])
}

func TestShareValidationAndLog(t *testing.T) {
	e := newTestEnv(t, conf.UploadConfig{})
	fileID := e.mustUpload(t, "alice", "a.txt", "x")

	w := e.doJSON(t, http.MethodPost, "/share/"+fileID+"?user_id=alice", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email is required")

	w = e.doJSON(t, http.MethodPost, "/share/"+fileID+"?user_id=alice", map[string]string{
		"email": "bob@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "File shared with bob@example.com")

	collabs := e.store.Collaborations()
	require.Len(t, collabs, 1)
	assert.Equal(t, "bob@example.com", collabs[0].SharedWith)
}

func TestSyncBulkShares(t *testing.T) {
	e := newTestEnv(t, conf.UploadConfig{})
	e.mustUpload(t, "alice", "a.txt", "x")
	e.mustUpload(t, "alice", "b.txt", "y")

	w := e.doJSON(t, http.MethodPost, "/sync?user_id=alice", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.doJSON(t, http.MethodPost, "/sync?user_id=alice", map[string]string{"group": "team"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Files synced with team")

	assert.Len(t, e.store.Collaborations(), 2)
}
