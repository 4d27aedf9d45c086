package transcribe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mgpai22/voxserve/internal/audio"
	"github.com/mgpai22/voxserve/internal/subtitle"
)

// holds the result of transcribing a chunk
type chunkResult struct {
	Index  int
	Result *Result
	Error  error
}

// transcribes a single chunk and shifts its timestamps by the chunk offset
func transcribeChunk(
	ctx context.Context,
	engine Engine,
	chunk audio.ChunkInfo,
) (*Result, error) {
	result, err := engine.Transcribe(ctx, chunk.Path)
	if err != nil {
		return nil, err
	}

	offset := chunk.StartTime.Seconds()
	adjusted := make([]subtitle.Segment, len(result.Segments))
	for i, seg := range result.Segments {
		adjusted[i] = subtitle.Segment{
			Start: seg.Start + offset,
			End:   seg.End + offset,
			Text:  seg.Text,
		}
	}

	return &Result{
		Text:     result.Text,
		Segments: adjusted,
		Language: result.Language,
		Duration: result.Duration,
	}, nil
}

// TranscribeChunks transcribes audio chunks in parallel and merges them in
// chunk order. The first failure cancels the remaining work.
func TranscribeChunks(
	ctx context.Context,
	engine Engine,
	chunks []audio.ChunkInfo,
	concurrency int,
) (*Result, error) {
	if len(chunks) == 0 {
		return &Result{}, nil
	}

	if concurrency <= 0 {
		concurrency = 3
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workChan := make(chan audio.ChunkInfo)
	resultChan := make(chan chunkResult, len(chunks))

	var wg sync.WaitGroup
	for i := 0; i < concurrency && i < len(chunks); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case chunk, ok := <-workChan:
					if !ok {
						return
					}
					if ctx.Err() != nil {
						return
					}

					result, err := transcribeChunk(ctx, engine, chunk)
					if err != nil {
						cancel()
					}
					resultChan <- chunkResult{
						Index:  chunk.Index,
						Result: result,
						Error:  err,
					}
				}
			}
		}()
	}

	go func() {
		defer close(workChan)
		for _, chunk := range chunks {
			select {
			case <-ctx.Done():
				return
			case workChan <- chunk:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]chunkResult, 0, len(chunks))
	var firstErr error
	for result := range resultChan {
		if result.Error != nil && firstErr == nil {
			firstErr = fmt.Errorf(
				"chunk %d failed: %w",
				result.Index,
				result.Error,
			)
			cancel()
		}
		if result.Error == nil {
			results = append(results, result)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if len(results) != len(chunks) {
		// cancelled from outside before every chunk ran
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("transcribed %d of %d chunks", len(results), len(chunks))
	}

	// sort by index to maintain order
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	// merge
	var (
		allSegments []subtitle.Segment
		texts       []string
		language    string
	)
	for _, r := range results {
		allSegments = append(allSegments, r.Result.Segments...)
		if text := strings.TrimSpace(r.Result.Text); text != "" {
			texts = append(texts, text)
		}
		if language == "" {
			language = r.Result.Language
		}
	}

	var totalDuration time.Duration
	last := chunks[len(chunks)-1]
	for _, c := range chunks {
		if c.EndTime > totalDuration {
			totalDuration = c.EndTime
		}
	}
	if totalDuration == 0 {
		totalDuration = last.StartTime + results[len(results)-1].Result.Duration
	}

	return &Result{
		Text:     strings.Join(texts, " "),
		Segments: allSegments,
		Language: language,
		Duration: totalDuration,
	}, nil
}
