package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/voxserve/internal/audio"
	"github.com/mgpai22/voxserve/internal/video"
)

var extractCmd = &cobra.Command{
	Use:   "extract [video_file]",
	Short: "Extract audio from a video file",
	Long: `Extract the audio track from a video file and save it as a separate audio file.

Supports multiple output formats: wav, mp3, m4a, flac, ogg.

Examples:
  voxserve extract video.mp4
  voxserve extract video.mp4 -o audio.mp3 -f mp3
  voxserve extract video.mp4 --format wav --sample-rate 44100 --channels 2`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"skipConfigLoad": "true"},
	RunE:        runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().
		StringP("format", "f", "wav", "Output audio format (wav, mp3, m4a, flac, ogg)")
	extractCmd.Flags().
		IntP("sample-rate", "r", 16000, "Sample rate in Hz (e.g., 16000, 44100, 48000)")
	extractCmd.Flags().
		Int("channels", 1, "Number of audio channels (1=mono, 2=stereo)")
	extractCmd.Flags().
		StringP("bitrate", "b", "", "Bitrate for lossy formats (e.g., 128k, 320k)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	videoPath := args[0]

	format, _ := cmd.Flags().GetString("format")
	sampleRate, _ := cmd.Flags().GetInt("sample-rate")
	channels, _ := cmd.Flags().GetInt("channels")
	bitrate, _ := cmd.Flags().GetString("bitrate")
	outputPath, _ := cmd.Flags().GetString("output")

	format = strings.ToLower(strings.TrimSpace(format))
	opts := video.ExtractAudioOptions{
		Format:     format,
		SampleRate: sampleRate,
		Channels:   channels,
		Bitrate:    bitrate,
	}
	if err := validateExtractOptions(opts); err != nil {
		return err
	}

	if !audio.IsVideoFile(videoPath) {
		return fmt.Errorf("unsupported file type: %s (expected a video file)", filepath.Ext(videoPath))
	}
	if outputPath == "" {
		outputPath = defaultOutputPath(videoPath, "."+format)
	}

	logger.Infow("Extracting audio",
		"video", videoPath,
		"output", outputPath,
		"format", format,
		"sample_rate", sampleRate,
		"channels", channels,
	)

	if err := video.ExtractAudio(ctx, videoPath, outputPath, opts); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Audio extracted successfully: %s\n", absOutput)

	return nil
}

func validateExtractOptions(opts video.ExtractAudioOptions) error {
	if opts.Format == "" {
		return fmt.Errorf("output format must be set")
	}
	if _, err := audio.EncodeArgs(audio.CompressionOptions{Format: opts.Format}); err != nil {
		return fmt.Errorf("invalid format %q: supported formats are wav, mp3, m4a, flac, ogg", opts.Format)
	}
	if opts.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", opts.SampleRate)
	}
	if opts.Channels != 1 && opts.Channels != 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", opts.Channels)
	}
	return nil
}
