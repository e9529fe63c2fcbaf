package apiclient_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Kantheephob/Nostalgia-Life-Log/internal/apiclient"
	"github.com/Kantheephob/Nostalgia-Life-Log/internal/bootstrap"
	"github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/config"
)

func newTestServer(t *testing.T) *httptest.Server {
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
	srv := httptest.NewServer(app.Router)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientUploadListDelete(t *testing.T) {
	srv := newTestServer(t)
	client := apiclient.New(srv.URL, apiclient.WithGuestID("alice"))
	ctx := context.Background()

	img, err := client.Upload(ctx, "shot.png", "image/png", 9, strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if img.URL == "" {
		t.Fatal("upload returned empty url")
	}
	if img.Size != 9 {
		t.Fatalf("size = %d, want 9", img.Size)
	}
	if img.MimeType != "image/png" {
		t.Fatalf("type = %q, want image/png", img.MimeType)
	}

	imgs, err := client.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(imgs) != 1 || imgs[0].URL != img.URL {
		t.Fatalf("list = %+v, want the uploaded image", imgs)
	}

	if err := client.Delete(ctx, img.URL); err != nil {
		t.Fatalf("delete: %v", err)
	}

	imgs, err = client.List(ctx)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(imgs) != 0 {
		t.Fatalf("%d images after delete, want 0", len(imgs))
	}
}

func TestClientSurfacesServerErrors(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	// Disallowed type is rejected with the server's message.
	client := apiclient.New(srv.URL, apiclient.WithGuestID("alice"))
	_, err := client.Upload(ctx, "anim.gif", "image/gif", 3, strings.NewReader("gif"))
	if err == nil {
		t.Fatal("expected error for gif upload")
	}
	if !strings.Contains(err.Error(), "Invalid file type") {
		t.Fatalf("error %q does not carry the server message", err)
	}

	// Deleting another owner's image is forbidden.
	img, err := client.Upload(ctx, "mine.png", "image/png", 4, strings.NewReader("mine"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	other := apiclient.New(srv.URL, apiclient.WithGuestID("bob"))
	if err := other.Delete(ctx, img.URL); err == nil {
		t.Fatal("expected forbidden error")
	} else if !strings.Contains(err.Error(), "Cannot delete images not belonging") {
		t.Fatalf("error %q does not carry the server message", err)
	}
}

func TestClientRequiresIdentity(t *testing.T) {
	srv := newTestServer(t)
	client := apiclient.New(srv.URL)

	if _, err := client.List(context.Background()); err == nil {
		t.Fatal("expected error without identity")
	}
}
