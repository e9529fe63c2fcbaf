package images_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Kantheephob/Nostalgia-Life-Log/internal/bootstrap"
	"github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/config"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:3000"},
		BlobStoreType:   "local",
		LocalStoreDir:   t.TempDir(),
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app.Router
}

func multipartBody(t *testing.T, fileName, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func uploadAs(t *testing.T, router *gin.Engine, guestID, fileName, contentType string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, formContentType := multipartBody(t, fileName, contentType, payload)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", formContentType)
	req.Header.Set("X-Guest-Id", guestID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestUploadListDelete(t *testing.T) {
	router := newTestRouter(t)

	resp := uploadAs(t, router, "alice", "sunset.png", "image/png", []byte("png-bytes"))
	if resp.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body %s", resp.Code, resp.Body.String())
	}

	var uploaded struct {
		Success  bool   `json:"success"`
		URL      string `json:"url"`
		Filename string `json:"filename"`
		Size     int64  `json:"size"`
		Type     string `json:"type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if !uploaded.Success || uploaded.URL == "" {
		t.Fatalf("unexpected upload response: %+v", uploaded)
	}
	if uploaded.Size != int64(len("png-bytes")) {
		t.Fatalf("size = %d, want %d", uploaded.Size, len("png-bytes"))
	}
	if uploaded.Type != "image/png" {
		t.Fatalf("type = %q, want image/png", uploaded.Type)
	}

	// Listing shows the stored image.
	reqList := httptest.NewRequest(http.MethodGet, "/api/images", nil)
	reqList.Header.Set("X-Guest-Id", "alice")
	respList := httptest.NewRecorder()
	router.ServeHTTP(respList, reqList)
	if respList.Code != http.StatusOK {
		t.Fatalf("list status = %d", respList.Code)
	}

	var listing struct {
		Success bool `json:"success"`
		Images  []struct {
			URL      string `json:"url"`
			Filename string `json:"filename"`
			Size     int64  `json:"size"`
		} `json:"images"`
		Count int `json:"count"`
	}
	if err := json.NewDecoder(respList.Body).Decode(&listing); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if listing.Count != 1 || len(listing.Images) != 1 {
		t.Fatalf("count = %d, images = %d, want 1", listing.Count, len(listing.Images))
	}
	if listing.Images[0].URL != uploaded.URL {
		t.Fatalf("listed url %q != uploaded url %q", listing.Images[0].URL, uploaded.URL)
	}

	// Delete it, then the gallery is empty.
	reqDel := httptest.NewRequest(http.MethodDelete, "/api/images/delete?url="+url.QueryEscape(uploaded.URL), nil)
	reqDel.Header.Set("X-Guest-Id", "alice")
	respDel := httptest.NewRecorder()
	router.ServeHTTP(respDel, reqDel)
	if respDel.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", respDel.Code, respDel.Body.String())
	}

	respList2 := httptest.NewRecorder()
	reqList2 := httptest.NewRequest(http.MethodGet, "/api/images", nil)
	reqList2.Header.Set("X-Guest-Id", "alice")
	router.ServeHTTP(respList2, reqList2)
	var listing2 struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(respList2.Body).Decode(&listing2); err != nil {
		t.Fatalf("decode second list: %v", err)
	}
	if listing2.Count != 0 {
		t.Fatalf("count after delete = %d, want 0", listing2.Count)
	}
}

func TestUploadRejectsMissingFile(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=empty")
	req.Header.Set("X-Guest-Id", "alice")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
	assertErrorMessage(t, resp, "No file provided")
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	router := newTestRouter(t)

	resp := uploadAs(t, router, "alice", "anim.gif", "image/gif", []byte("gif-bytes"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
	assertErrorMessage(t, resp, "Invalid file type. Only JPEG, PNG, WebP, and SVG images are allowed.")
}

func TestUploadRequiresIdentity(t *testing.T) {
	router := newTestRouter(t)

	body, formContentType := multipartBody(t, "a.png", "image/png", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", formContentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.Code)
	}
}

func TestDeleteRequiresURL(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/images/delete", nil)
	req.Header.Set("X-Guest-Id", "alice")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
	assertErrorMessage(t, resp, "Image URL is required")
}

func TestDeleteRejectsForeignImage(t *testing.T) {
	router := newTestRouter(t)

	resp := uploadAs(t, router, "bob", "secret.jpg", "image/jpeg", []byte("jpeg-bytes"))
	if resp.Code != http.StatusOK {
		t.Fatalf("upload status = %d", resp.Code)
	}
	var uploaded struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}

	reqDel := httptest.NewRequest(http.MethodDelete, "/api/images/delete?url="+url.QueryEscape(uploaded.URL), nil)
	reqDel.Header.Set("X-Guest-Id", "alice")
	respDel := httptest.NewRecorder()
	router.ServeHTTP(respDel, reqDel)

	if respDel.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", respDel.Code)
	}
	assertErrorMessage(t, respDel, "Unauthorized: Cannot delete images not belonging to this account.")

	// Bob's gallery is intact.
	reqList := httptest.NewRequest(http.MethodGet, "/api/images", nil)
	reqList.Header.Set("X-Guest-Id", "bob")
	respList := httptest.NewRecorder()
	router.ServeHTTP(respList, reqList)
	var listing struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(respList.Body).Decode(&listing); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if listing.Count != 1 {
		t.Fatalf("bob's count = %d, want 1", listing.Count)
	}
}

func TestGalleriesAreIsolatedPerOwner(t *testing.T) {
	router := newTestRouter(t)

	if resp := uploadAs(t, router, "alice", "a.png", "image/png", []byte("a")); resp.Code != http.StatusOK {
		t.Fatalf("alice upload status = %d", resp.Code)
	}
	if resp := uploadAs(t, router, "bob", "b.png", "image/png", []byte("b")); resp.Code != http.StatusOK {
		t.Fatalf("bob upload status = %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/images", nil)
	req.Header.Set("X-Guest-Id", "alice")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var listing struct {
		Images []struct {
			Filename string `json:"filename"`
		} `json:"images"`
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if listing.Count != 1 {
		t.Fatalf("alice's count = %d, want 1", listing.Count)
	}
}

func assertErrorMessage(t *testing.T, resp *httptest.ResponseRecorder, want string) {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error != want {
		t.Fatalf("error = %q, want %q", body.Error, want)
	}
}
