package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stylehaus/outfit-assistant/internal/llm"
)

const embedBatchSize = 100

func embedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed <input.csv> <output.csv>",
		Short: "Compute embeddings for a catalog CSV",
		Long: `Reads a catalog CSV, embeds a textual description of every item, and
writes the same CSV with an appended embeddings column ready for serving.`,
		Args: cobra.ExactArgs(2),
		RunE: runEmbed,
	}
	return cmd
}

func runEmbed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	inputPath, outputPath := args[0], args[1]

	client, err := llm.NewClient(llm.Config{
		APIKey:         viper.GetString("openai.api_key"),
		EmbeddingModel: viper.GetString("openai.embedding_model"),
		BaseURL:        viper.GetString("openai.base_url"),
	}, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}

	input, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer input.Close()

	reader := csv.NewReader(input)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	if _, ok := columns["productDisplayName"]; !ok {
		return fmt.Errorf("input has no productDisplayName column")
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}

	output, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer output.Close()

	writer := csv.NewWriter(output)
	if err := writer.Write(append(header, "embeddings")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bar := progressbar.NewOptions(len(rows),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Embedding catalog items..."),
	)

	for start := 0; start < len(rows); start += embedBatchSize {
		end := min(start+embedBatchSize, len(rows))
		batch := rows[start:end]

		texts := make([]string, len(batch))
		for i, row := range batch {
			texts[i] = itemDescription(columns, row)
		}

		vectors, err := client.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch at row %d failed: %w", start, err)
		}

		for i, row := range batch {
			encoded, err := json.Marshal(vectors[i])
			if err != nil {
				return fmt.Errorf("failed to encode vector: %w", err)
			}
			if err := writer.Write(append(row, string(encoded))); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
			_ = bar.Add(1)
		}
		writer.Flush()
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\nWrote %d items to %s\n", len(rows), outputPath)
	return nil
}

// itemDescription assembles the text that gets embedded for one catalog row.
// The richer the description, the better the similarity search behaves.
func itemDescription(columns map[string]int, row []string) string {
	var parts []string
	for _, name := range []string{"productDisplayName", "articleType", "baseColour", "gender", "usage", "season"} {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			continue
		}
		if value := strings.TrimSpace(row[idx]); value != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, ", ")
}
