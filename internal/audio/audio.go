package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/voxserve/internal/ffmpeg"
)

// audio chunk info
type ChunkInfo struct {
	Path      string
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
}

// settings for audio compression
type CompressionOptions struct {
	Format     string // Output format (mp3, aac, etc.)
	SampleRate int    // Sample rate in Hz
	Channels   int    // Number of channels (1=mono, 2=stereo)
	Bitrate    string // Bitrate (e.g., "64k", "128k")
}

// defaults for transcription
func DefaultCompressionOptions() CompressionOptions {
	return CompressionOptions{
		Format:     "mp3",
		SampleRate: 16000,
		Channels:   1,
		Bitrate:    "64k",
	}
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// duration of an audio/video file
func GetDuration(ctx context.Context, filePath string) (time.Duration, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return 0, fmt.Errorf("file not found: %s", filePath)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return 0, err
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		filePath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var seconds float64
	if _, err := fmt.Sscanf(probe.Format.Duration, "%f", &seconds); err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// EncodeArgs builds the ffmpeg output arguments for an audio-only encode.
func EncodeArgs(opts CompressionOptions) (ffmpeg.KwArgs, error) {
	kwargs := ffmpeg.KwArgs{"vn": ""}
	if opts.SampleRate > 0 {
		kwargs["ar"] = opts.SampleRate
	}
	if opts.Channels > 0 {
		kwargs["ac"] = opts.Channels
	}

	lossy := true
	switch strings.ToLower(opts.Format) {
	case "", "mp3":
		kwargs["acodec"] = "libmp3lame"
	case "aac", "m4a":
		kwargs["acodec"] = "aac"
	case "ogg":
		kwargs["acodec"] = "libvorbis"
	case "flac":
		kwargs["acodec"] = "flac"
		lossy = false
	case "wav":
		kwargs["acodec"] = "pcm_s16le"
		lossy = false
	default:
		return nil, fmt.Errorf("unsupported audio format %q", opts.Format)
	}

	if lossy && opts.Bitrate != "" {
		kwargs["b:a"] = opts.Bitrate
	}
	return kwargs, nil
}

// compresses an audio file with the given options
func CompressAudio(
	ctx context.Context,
	inputPath, outputPath string,
	opts CompressionOptions,
) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	kwargs, err := EncodeArgs(opts)
	if err != nil {
		return err
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	err = ffmpeg.Input(inputPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()

	if err != nil {
		return fmt.Errorf("compression failed: %w", err)
	}

	return nil
}

// planned chunk boundaries, in seconds
type chunkPlan struct {
	index        int
	startSeconds float64
	endSeconds   float64
}

// planChunks splits total into consecutive windows of at most chunk. The
// last window is shortened to end exactly at total.
func planChunks(total, chunk time.Duration) []chunkPlan {
	if total <= 0 || chunk <= 0 {
		return nil
	}

	chunkSeconds := chunk.Seconds()
	totalSeconds := total.Seconds()

	var plans []chunkPlan
	for i := 0; ; i++ {
		start := float64(i) * chunkSeconds
		if start >= totalSeconds {
			break
		}
		plans = append(plans, chunkPlan{
			index:        i,
			startSeconds: start,
			endSeconds:   min(start+chunkSeconds, totalSeconds),
		})
	}
	return plans
}

// ChunkAudio splits an audio file into chunks of the given duration, cutting
// up to concurrency chunks at once (10 when non-positive). Chunks are
// returned in playback order.
func ChunkAudio(
	ctx context.Context,
	audioPath string,
	chunkDuration time.Duration,
	outputDir string,
	concurrency int,
) ([]ChunkInfo, error) {
	if chunkDuration <= 0 {
		return nil, fmt.Errorf(
			"chunk duration must be positive, got %v",
			chunkDuration,
		)
	}

	if concurrency <= 0 {
		concurrency = 10
	}

	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	totalDuration, err := GetDuration(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get audio duration: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(audioPath)
	baseName := strings.TrimSuffix(filepath.Base(audioPath), ext)
	plans := planChunks(totalDuration, chunkDuration)

	chunks := make([]ChunkInfo, len(plans))
	errs := make([]error, len(plans))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, plan := range plans {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			if ctx.Err() != nil {
				errs[i] = ctx.Err()
				return
			}

			chunkPath := filepath.Join(
				outputDir,
				fmt.Sprintf("%s_chunk_%03d%s", baseName, plan.index, ext),
			)
			kwargs := ffmpeg.KwArgs{
				"ss": plan.startSeconds,
				"t":  plan.endSeconds - plan.startSeconds,
				"c":  "copy",
			}

			err := ffmpeg.Input(audioPath).
				Output(chunkPath, kwargs).
				OverWriteOutput().
				SetFfmpegPath(ffmpegPath).
				Run()
			if err != nil {
				errs[i] = fmt.Errorf("failed to create chunk %d: %w", plan.index, err)
				return
			}

			chunks[i] = ChunkInfo{
				Path:      chunkPath,
				Index:     plan.index,
				StartTime: time.Duration(plan.startSeconds * float64(time.Second)),
				EndTime:   time.Duration(plan.endSeconds * float64(time.Second)),
			}
		}()
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		_ = CleanupChunks(chunks)
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		_ = CleanupChunks(chunks)
		return nil, err
	}

	return chunks, nil
}

// extensions accepted by the transcription upload endpoint
var uploadExtensions = []string{".wav", ".mp3", ".m4a", ".flac", ".ogg", ".webm"}

// SupportedUploadExtensions returns the upload allowlist in display order.
func SupportedUploadExtensions() []string {
	return append([]string(nil), uploadExtensions...)
}

// IsSupportedUpload reports whether an uploaded filename has an accepted
// audio extension. The check is case-insensitive.
func IsSupportedUpload(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return false
	}
	for _, allowed := range uploadExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// checks if the file is a video based on extension
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	videoExts := map[string]bool{
		".mp4":  true,
		".mkv":  true,
		".avi":  true,
		".mov":  true,
		".wmv":  true,
		".flv":  true,
		".webm": true,
		".m4v":  true,
		".mpeg": true,
		".mpg":  true,
		".3gp":  true,
	}
	return videoExts[ext]
}

// checks if the file is an audio file based on extension
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	audioExts := map[string]bool{
		".mp3":  true,
		".wav":  true,
		".aac":  true,
		".flac": true,
		".ogg":  true,
		".m4a":  true,
		".wma":  true,
		".aiff": true,
	}
	return audioExts[ext]
}

// checks if the file is either audio or video
func IsMediaFile(path string) bool {
	return IsAudioFile(path) || IsVideoFile(path)
}

// removes all chunk files
func CleanupChunks(chunks []ChunkInfo) error {
	var lastErr error
	for _, chunk := range chunks {
		if chunk.Path == "" {
			continue
		}
		if err := os.Remove(chunk.Path); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
	}
	return lastErr
}
