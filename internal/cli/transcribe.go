package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/voxserve/internal/audio"
	"github.com/mgpai22/voxserve/internal/config"
	"github.com/mgpai22/voxserve/internal/subtitle"
	"github.com/mgpai22/voxserve/internal/transcribe"
	"github.com/mgpai22/voxserve/internal/video"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [media_file]",
	Short: "Transcribe an audio or video file locally",
	Long: `Transcribe the specified audio or video file with the configured provider and
write the result in any of the API's response formats.

Video files have their audio track extracted first; audio files are
re-encoded to mono mp3 to stay under provider upload limits. Long recordings
can be split into chunks that are transcribed in parallel and stitched back
together with their timestamps offset.

Examples:
  voxserve transcribe talk.mp3
  voxserve transcribe lecture.mp4 --format vtt --reflow
  voxserve transcribe podcast.m4a -f verbose_json -d 10 --concurrency 4
  voxserve transcribe interview.wav --provider gemini --language ko`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	transcribeCmd.Flags().
		StringP("format", "f", "srt", "Output format (json, text, srt, vtt, verbose_json)")
	transcribeCmd.Flags().
		StringP("api-key", "k", "", "Provider API key, overrides the configured key")
	transcribeCmd.Flags().
		String("provider", "", "Transcription provider (openai, whisper, gemini)")
	transcribeCmd.Flags().
		String("base-url", "", "OpenAI-compatible endpoint, required for whisper")
	transcribeCmd.Flags().
		String("model", "", "Model name, overrides transcription.model")
	transcribeCmd.Flags().
		String("prompt", "", "Prompt to guide vocabulary and spelling")
	transcribeCmd.Flags().
		Bool("translate", false, "Translate speech to English (openai and whisper only)")
	transcribeCmd.Flags().
		Bool("reflow", false, "Split long segments into readable subtitle cues")
	transcribeCmd.Flags().
		IntP("chunk-duration", "d", 0, "Chunk duration in minutes, 0 to send the whole file")
	transcribeCmd.Flags().
		Int("concurrency", 0, "Parallel chunk workers, overrides transcription.concurrency")
}

type transcribeFlags struct {
	format        transcribe.ResponseFormat
	outputPath    string
	reflow        bool
	chunkDuration time.Duration
	concurrency   int
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mediaPath := args[0]

	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", mediaPath)
	}
	if !audio.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(mediaPath))
	}

	c, err := loadConfig()
	if err != nil {
		return err
	}

	settings := engineSettingsFrom(c)
	if err := applyEngineFlags(cmd, &settings); err != nil {
		return err
	}
	flags, err := readTranscribeFlags(cmd, mediaPath, c.Transcription.Concurrency)
	if err != nil {
		return err
	}

	logger.Infow("Starting transcription",
		"input", mediaPath,
		"output", flags.outputPath,
		"format", flags.format.String(),
		"provider", settings.Provider,
		"chunk_duration", flags.chunkDuration.String(),
	)

	engine, err := newEngine(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	if err := c.EnsureDirectories(); err != nil {
		return err
	}
	tempDir, err := os.MkdirTemp(c.Paths.TempDir, "voxserve-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	audioPath, err := prepareAudio(ctx, mediaPath, tempDir)
	if err != nil {
		return err
	}

	result, err := transcribeAudio(ctx, engine, audioPath, tempDir, flags)
	if err != nil {
		return err
	}

	if flags.reflow {
		result.Segments = subtitle.Reflow(result.Segments, subtitle.DefaultReflowOptions())
	}

	body, err := transcribe.Render(result, flags.format)
	if err != nil {
		return fmt.Errorf("failed to render transcript: %w", err)
	}
	if dir := filepath.Dir(flags.outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(flags.outputPath, body, 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}

	absOutput, _ := filepath.Abs(flags.outputPath)
	fmt.Printf("Transcript written successfully: %s\n", absOutput)
	fmt.Printf("  Segments: %d\n", len(result.Segments))
	fmt.Printf("  Duration: %s\n", result.Duration.Round(time.Millisecond))
	if result.Language != "" {
		fmt.Printf("  Language: %s\n", result.Language)
	}

	return nil
}

// applyEngineFlags layers command-line provider settings over the config.
func applyEngineFlags(cmd *cobra.Command, settings *engineSettings) error {
	if provider, _ := cmd.Flags().GetString("provider"); provider != "" {
		if provider != settings.Provider {
			// the configured key belongs to another provider
			settings.Options.APIKey = ""
			settings.Options.BaseURL = ""
			settings.Options.Model = ""
		}
		settings.Provider = provider
	}
	if apiKey, _ := cmd.Flags().GetString("api-key"); apiKey != "" {
		settings.Options.APIKey = apiKey
	}
	if settings.Options.APIKey == "" {
		settings.Options.APIKey = config.ProviderAPIKey(settings.Provider)
	}
	if baseURL, _ := cmd.Flags().GetString("base-url"); baseURL != "" {
		settings.Options.BaseURL = baseURL
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		settings.Options.Model = model
	}
	if prompt, _ := cmd.Flags().GetString("prompt"); prompt != "" {
		settings.Options.Prompt = prompt
	}
	if language, _ := cmd.Flags().GetString("language"); language != "" {
		settings.Options.Language = language
	}
	settings.Options.Translate, _ = cmd.Flags().GetBool("translate")

	if _, err := transcribe.ParseProvider(settings.Provider); err != nil {
		return err
	}
	if _, err := transcribe.NormalizeLanguage(settings.Options.Language); err != nil {
		return err
	}
	return nil
}

func readTranscribeFlags(cmd *cobra.Command, mediaPath string, defaultConcurrency int) (transcribeFlags, error) {
	formatStr, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	reflow, _ := cmd.Flags().GetBool("reflow")
	chunkMinutes, _ := cmd.Flags().GetInt("chunk-duration")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	format, err := transcribe.ParseResponseFormat(formatStr)
	if err != nil {
		return transcribeFlags{}, err
	}
	if chunkMinutes < 0 {
		return transcribeFlags{}, fmt.Errorf("chunk duration must not be negative, got %d", chunkMinutes)
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if outputPath == "" {
		outputPath = defaultOutputPath(mediaPath, format.Extension())
	}

	return transcribeFlags{
		format:        format,
		outputPath:    outputPath,
		reflow:        reflow,
		chunkDuration: time.Duration(chunkMinutes) * time.Minute,
		concurrency:   concurrency,
	}, nil
}

// prepareAudio produces a compact mono mp3 inside tempDir.
func prepareAudio(ctx context.Context, mediaPath, tempDir string) (string, error) {
	audioPath := filepath.Join(tempDir, "audio.mp3")
	compressionOpts := audio.DefaultCompressionOptions()

	if audio.IsVideoFile(mediaPath) {
		logger.Infow("Extracting audio from video")
		extractOpts := video.ExtractAudioOptions{
			Format:     compressionOpts.Format,
			SampleRate: compressionOpts.SampleRate,
			Channels:   compressionOpts.Channels,
			Bitrate:    compressionOpts.Bitrate,
		}
		if err := video.ExtractAudio(ctx, mediaPath, audioPath, extractOpts); err != nil {
			return "", fmt.Errorf("failed to extract audio: %w", err)
		}
		return audioPath, nil
	}

	logger.Infow("Compressing audio for transcription")
	if err := audio.CompressAudio(ctx, mediaPath, audioPath, compressionOpts); err != nil {
		return "", fmt.Errorf("failed to compress audio: %w", err)
	}
	return audioPath, nil
}

func transcribeAudio(
	ctx context.Context,
	engine transcribe.Engine,
	audioPath, tempDir string,
	flags transcribeFlags,
) (*transcribe.Result, error) {
	if flags.chunkDuration <= 0 {
		logger.Infow("Transcribing audio")
		result, err := engine.Transcribe(ctx, audioPath)
		if err != nil {
			return nil, fmt.Errorf("transcription failed: %w", err)
		}
		return result, nil
	}

	duration, err := audio.GetDuration(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get audio duration: %w", err)
	}
	logger.Infow("Splitting audio into chunks",
		"duration", duration.String(),
		"chunk_duration", flags.chunkDuration.String(),
	)

	chunks, err := audio.ChunkAudio(ctx, audioPath, flags.chunkDuration, filepath.Join(tempDir, "chunks"), flags.concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to split audio: %w", err)
	}
	defer func() { _ = audio.CleanupChunks(chunks) }()

	logger.Infow("Transcribing chunks",
		"count", len(chunks),
		"concurrency", flags.concurrency,
	)
	result, err := transcribe.TranscribeChunks(ctx, engine, chunks, flags.concurrency)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	if result.Duration == 0 {
		result.Duration = duration
	}
	return result, nil
}
