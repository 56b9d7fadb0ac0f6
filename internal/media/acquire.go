package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrMediaNotFound means the downloader finished but produced none of the
// container formats we know how to probe for.
var ErrMediaNotFound = errors.New("media: downloaded video file not found")

// yt-dlp picks the final extension itself, so after it exits we probe for
// the containers it is known to produce.
var downloadExtensions = []string{"webm", "mkv"}

// Acquirer turns a remote URL or an uploaded stream into a local video
// file under the configured video directory. Files are never cleaned up.
type Acquirer struct {
	videoDir string
	runner   Runner
}

func NewAcquirer(videoDir string, runner Runner) (*Acquirer, error) {
	if runner == nil {
		runner = NewExecRunner()
	}
	if err := os.MkdirAll(videoDir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create video dir: %w", err)
	}
	return &Acquirer{videoDir: videoDir, runner: runner}, nil
}

// Fetch downloads videoURL with yt-dlp into
// "<videoDir>/<collectionName>.%(ext)s" and returns the path of whichever
// known container materialized.
func (a *Acquirer) Fetch(ctx context.Context, videoURL, collectionName string) (string, error) {
	template := filepath.Join(a.videoDir, collectionName+".%(ext)s")
	if err := a.runner.Run(ctx, "yt-dlp", "-o", template, videoURL); err != nil {
		return "", fmt.Errorf("media: download: %w", err)
	}
	for _, ext := range downloadExtensions {
		path := filepath.Join(a.videoDir, collectionName+"."+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrMediaNotFound
}

// SaveUpload streams an uploaded file to
// "<videoDir>/<collectionName><original extension>".
func (a *Acquirer) SaveUpload(src io.Reader, originalName, collectionName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(a.videoDir, collectionName+ext)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("media: create upload file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("media: write upload: %w", err)
	}
	return path, nil
}
