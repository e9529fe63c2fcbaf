package main

// journal is a small CLI for the photo journal API:
//   journal -server http://localhost:8080 -guest demo upload photo1.jpg photo2.png
//   journal -server http://localhost:8080 -guest demo list
//   journal -server http://localhost:8080 -guest demo delete <url>

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/Kantheephob/Nostalgia-Life-Log/internal/apiclient"
	"github.com/Kantheephob/Nostalgia-Life-Log/internal/gallery"
	"github.com/Kantheephob/Nostalgia-Life-Log/internal/uploader"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "API server base URL")
	token := flag.String("token", "", "session token (Bearer)")
	guest := flag.String("guest", "", "guest identity")
	concurrency := flag.Int("concurrency", uploader.DefaultConcurrency, "parallel uploads")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	var opts []apiclient.Option
	switch {
	case *token != "":
		opts = append(opts, apiclient.WithToken(*token))
	case *guest != "":
		opts = append(opts, apiclient.WithGuestID(*guest))
	default:
		log.Fatal("either -token or -guest is required")
	}
	client := apiclient.New(*serverURL, opts...)
	ctx := context.Background()

	switch args[0] {
	case "upload":
		runUpload(ctx, client, args[1:], *concurrency)
	case "list":
		runList(ctx, client, ownerID(*token, *guest))
	case "delete":
		if len(args) != 2 {
			usage()
		}
		runDelete(ctx, client, ownerID(*token, *guest), args[1])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: journal [flags] upload <files...> | list | delete <url>")
	os.Exit(2)
}

// ownerID mirrors the server's identity derivation so the gallery store can
// run its local ownership checks. Token-based sessions let the server decide.
func ownerID(token, guest string) string {
	if token != "" {
		return ""
	}
	return "guest:" + guest
}

func runUpload(ctx context.Context, client *apiclient.Client, paths []string, concurrency int) {
	if len(paths) == 0 {
		usage()
	}

	files := make([]uploader.File, 0, len(paths))
	for _, p := range expandDirs(paths) {
		p := p
		info, err := os.Stat(p)
		if err != nil {
			log.Fatalf("stat %s: %v", p, err)
		}
		files = append(files, uploader.File{
			Name:        filepath.Base(p),
			ContentType: mime.TypeByExtension(filepath.Ext(p)),
			Size:        info.Size(),
			Open: func() (io.ReadCloser, error) {
				return os.Open(p)
			},
		})
	}

	orch := uploader.New(client, uploader.Config{
		Concurrency: concurrency,
		OnProgress: func(completed, total int, percent float64) {
			fmt.Printf("\ruploading %d/%d (%.0f%%)", completed, total, percent)
		},
	})
	result, err := orch.Run(ctx, files)
	fmt.Println()
	if err != nil {
		log.Fatalf("upload rejected: %v", err)
	}

	for _, out := range result.Outcomes {
		if out.Err != nil {
			fmt.Printf("FAILED  %s: %v\n", out.File.Name, out.Err)
			continue
		}
		fmt.Printf("stored  %s -> %s\n", out.File.Name, out.Image.URL)
	}
	if result.Failed > 0 {
		os.Exit(1)
	}
}

func runList(ctx context.Context, client *apiclient.Client, owner string) {
	store := gallery.New(client)
	store.SetOwner(firstNonEmpty(owner, "session"))
	if err := store.Refresh(ctx); err != nil {
		log.Fatalf("list: %v", err)
	}
	for _, img := range store.Images() {
		fmt.Printf("%s\t%d\t%s\t%s\n", img.UploadedAt.Format("2006-01-02 15:04:05"), img.Size, img.Filename, img.URL)
	}
	fmt.Printf("%d image(s)\n", store.Count())
}

func runDelete(ctx context.Context, client *apiclient.Client, owner, url string) {
	if owner != "" {
		store := gallery.New(client)
		store.SetOwner(owner)
		if err := store.Delete(ctx, url); err != nil {
			log.Fatalf("delete: %v", err)
		}
		fmt.Println("deleted")
		return
	}
	// Token sessions: the server enforces ownership.
	if err := client.Delete(ctx, url); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("deleted")
}

// expandDirs replaces directory arguments with the image files directly inside
// them, so a whole photo folder can be uploaded in one command.
func expandDirs(paths []string) []string {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			log.Fatalf("read dir %s: %v", p, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if strings.HasPrefix(mime.TypeByExtension(filepath.Ext(e.Name())), "image/") {
				out = append(out, filepath.Join(p, e.Name()))
			}
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
