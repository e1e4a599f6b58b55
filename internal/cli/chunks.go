package cli

import (
	"context"
	"fmt"
	"strings"

	"intervu/internal/common"
	"intervu/internal/rag"
	"intervu/internal/types"

	"github.com/spf13/cobra"
)

var chunksCmd = &cobra.Command{
	Use:   "chunks [job-description-file]",
	Short: "Inspect how a job description is chunked for retrieval",
	Long: `Split a job description into the overlapping chunks the interview
engine indexes for retrieval. Useful for tuning chunk size and overlap before
running sessions against a JD.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if chunksConfig.OutputFormat == "" {
			chunksConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(chunksConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runChunks,
}

var chunksConfig common.CommandConfig

var (
	chunkSizeOverride int
	overlapOverride   int
)

func init() {
	chunksCmd.Flags().StringVarP(&chunksConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	chunksCmd.Flags().StringVar(&chunksConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	chunksCmd.Flags().IntVar(&chunkSizeOverride, "chunk-size", 0, "Words per chunk (default from config)")
	chunksCmd.Flags().IntVar(&overlapOverride, "overlap", 0, "Overlapping words between chunks (default from config)")

	// Add completion for format flag
	_ = chunksCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runChunks(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	sizeWords := cfg.RAG.ChunkSizeWords
	if chunkSizeOverride > 0 {
		sizeWords = chunkSizeOverride
	}
	overlapWords := cfg.RAG.OverlapWords
	if overlapOverride > 0 {
		overlapWords = overlapOverride
	}

	chunker, err := rag.NewChunker(sizeWords, overlapWords)
	if err != nil {
		return fmt.Errorf("invalid chunking parameters: %w", err)
	}

	createInput := func(contents []string) (string, error) {
		if len(contents) != 1 {
			return "", fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		return contents[0], nil
	}

	logDetails := func(input string, cfg common.CommandConfig) {
		logger.Info("Chunking job description",
			"jd_chars", len(input),
			"chunk_size_words", sizeWords,
			"overlap_words", overlapWords,
			"output_format", cfg.OutputFormat)
	}

	chunkOperation := func(_ context.Context, jd string) (types.ChunkReport, error) {
		pieces := chunker.Split(jd)
		report := types.ChunkReport{
			SourceWords:    len(strings.Fields(jd)),
			ChunkSizeWords: sizeWords,
			OverlapWords:   overlapWords,
			Chunks:         make([]types.JobChunk, 0, len(pieces)),
		}
		for i, piece := range pieces {
			report.Chunks = append(report.Chunks, types.JobChunk{
				Index: i,
				Words: len(strings.Fields(piece)),
				Text:  piece,
			})
		}
		return report, nil
	}

	err = common.RunFileCommand(
		cmd.Context(),
		logger,
		chunksConfig,
		args,
		createInput,
		chunkOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to chunk job description: %w", err)
	}
	logger.Info("Job description chunking completed successfully")
	return nil
}
