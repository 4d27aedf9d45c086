package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/voxserve/internal/subtitle"
)

var convertCmd = &cobra.Command{
	Use:   "convert [subtitle_file]",
	Short: "Convert subtitles between SRT and WebVTT",
	Long: `Convert an SRT file to WebVTT or a WebVTT file to SRT.

The target format defaults to the other one, or follows the extension of
--output when given. Cue numbering is regenerated and timestamps are
re-rendered in the target notation.

Examples:
  voxserve convert talk.srt
  voxserve convert talk.vtt -o subs/talk.srt
  voxserve convert talk.srt --to vtt --reflow`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"skipConfigLoad": "true"},
	RunE:        runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().String("to", "", "Target format (srt or vtt)")
	convertCmd.Flags().Bool("reflow", false, "Split long cues into readable lines")
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	to, _ := cmd.Flags().GetString("to")
	outputPath, _ := cmd.Flags().GetString("output")
	reflow, _ := cmd.Flags().GetBool("reflow")

	segments, source, err := subtitle.Open(inputPath)
	if err != nil {
		return err
	}

	target, err := convertTarget(source, to, outputPath)
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath, target.Extension())
	}
	if sameFile(inputPath, outputPath) {
		return fmt.Errorf("output %s would overwrite the input", outputPath)
	}

	if reflow {
		segments = subtitle.Reflow(segments, subtitle.DefaultReflowOptions())
	}

	logger.Infow("Converting subtitles",
		"input", inputPath,
		"output", outputPath,
		"from", source.String(),
		"to", target.String(),
		"cues", len(segments),
	)

	if err := subtitle.WriteFile(outputPath, segments, target); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles converted successfully: %s\n", absOutput)
	fmt.Printf("  Cues: %d\n", len(segments))
	return nil
}

// convertTarget picks the output style: --to wins, then the output
// extension, then whichever style the input is not.
func convertTarget(source subtitle.Style, to, outputPath string) (subtitle.Style, error) {
	if to != "" {
		return subtitle.ParseStyle(to)
	}
	if outputPath != "" {
		return subtitle.StyleFromPath(outputPath)
	}
	if source == subtitle.StyleSRT {
		return subtitle.StyleVTT, nil
	}
	return subtitle.StyleSRT, nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
