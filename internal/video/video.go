package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/voxserve/internal/audio"
	ffmpegbin "github.com/mgpai22/voxserve/internal/ffmpeg"
)

// ErrNoAudio is returned when a video has no audio stream to transcribe.
var ErrNoAudio = errors.New("video has no audio stream")

// video file information
type Info struct {
	Path      string
	Duration  time.Duration
	Width     int
	Height    int
	FrameRate float64
	Codec     string
	HasAudio  bool
}

// holds options for audio extraction
type ExtractAudioOptions struct {
	Format     string // Output format (wav, mp3, aac, flac)
	SampleRate int    // Sample rate in Hz (e.g., 16000, 44100, 48000)
	Channels   int    // Number of channels (1 = mono, 2 = stereo)
	Bitrate    string // Bitrate for lossy formats (e.g., "128k", "320k")
}

// returns sensible defaults for audio extraction
func DefaultExtractAudioOptions() ExtractAudioOptions {
	return ExtractAudioOptions{
		Format:     "wav",
		SampleRate: 16000,
		Channels:   1,
	}
}

// ffprobe -show_streams -show_format output
type probeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// GetInfo probes a video file with ffprobe.
func GetInfo(ctx context.Context, videoPath string) (*Info, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		videoPath,
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbe(videoPath, out.Bytes())
}

func parseProbe(videoPath string, data []byte) (*Info, error) {
	var probe probeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{Path: videoPath}
	if seconds, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = time.Duration(seconds * float64(time.Second))
	}

	videoFound := false
	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "audio":
			info.HasAudio = true
		case "video":
			if videoFound {
				continue
			}
			videoFound = true
			info.Codec = stream.CodecName
			info.Width = stream.Width
			info.Height = stream.Height
			info.FrameRate = parseFrameRate(stream.AvgFrameRate)
		}
	}

	return info, nil
}

// parses ffprobe rates such as "30000/1001"
func parseFrameRate(rate string) float64 {
	num, den, found := strings.Cut(rate, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// extracts audio from video file
func ExtractAudio(
	ctx context.Context,
	videoPath, outputPath string,
	opts ExtractAudioOptions,
) error {
	info, err := GetInfo(ctx, videoPath)
	if err != nil {
		return err
	}
	if !info.HasAudio {
		return fmt.Errorf("%s: %w", videoPath, ErrNoAudio)
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	kwargs, err := audio.EncodeArgs(audio.CompressionOptions{
		Format:     opts.Format,
		SampleRate: opts.SampleRate,
		Channels:   opts.Channels,
		Bitrate:    opts.Bitrate,
	})
	if err != nil {
		return err
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	err = ffmpeg.Input(videoPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()

	if err != nil {
		return fmt.Errorf("ffmpeg extraction failed: %w", err)
	}

	return nil
}
