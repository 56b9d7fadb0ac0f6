package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Transcoder normalizes a source video into a reference .mp4 container and
// extracts a PCM .wav track suitable for the speech API. Both steps are
// external ffmpeg invocations; a non-zero exit from either aborts the
// ingestion attempt.
type Transcoder struct {
	videoDir string
	audioDir string
	runner   Runner
}

func NewTranscoder(videoDir, audioDir string, runner Runner) (*Transcoder, error) {
	if runner == nil {
		runner = NewExecRunner()
	}
	for _, dir := range []string{videoDir, audioDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("media: create dir %s: %w", dir, err)
		}
	}
	return &Transcoder{videoDir: videoDir, audioDir: audioDir, runner: runner}, nil
}

// Run remuxes inputPath into "<collectionName>.mp4" (video copied, audio
// re-encoded to AAC) and then extracts "<collectionName>.wav" as 44.1kHz
// stereo 16-bit PCM. It returns the wav path.
func (t *Transcoder) Run(ctx context.Context, inputPath, collectionName string) (string, error) {
	mp4Path := filepath.Join(t.videoDir, collectionName+".mp4")
	if err := t.runner.Run(ctx, "ffmpeg",
		"-y",
		"-i", inputPath,
		"-c:v", "copy",
		"-c:a", "aac",
		mp4Path,
	); err != nil {
		return "", fmt.Errorf("media: remux: %w", err)
	}

	wavPath := filepath.Join(t.audioDir, collectionName+".wav")
	if err := t.runner.Run(ctx, "ffmpeg",
		"-y",
		"-i", mp4Path,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "44100",
		"-ac", "2",
		wavPath,
	); err != nil {
		return "", fmt.Errorf("media: extract audio: %w", err)
	}
	return wavPath, nil
}
