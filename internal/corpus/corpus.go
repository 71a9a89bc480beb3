package corpus

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"rag-api/internal/config"
	"rag-api/internal/models"

	"github.com/google/uuid"
)

// The built-in demo corpus. Used whenever no corpus directory is configured.
var defaultTexts = []string{
	"Ferdinand Magellan was a Portuguese explorer who led the first circumnavigation of the world.",
	"The Eiffel Tower is located in Paris, France.",
	"The Great Wall of China is one of the seven wonders of the world.",
	"The Moon landing happened in 1969.",
	"Water boils at 100 degrees Celsius at sea level.",
}

// DefaultDocuments returns the built-in corpus, one document per sentence.
func DefaultDocuments() []models.Document {
	docs := make([]models.Document, len(defaultTexts))
	for i, text := range defaultTexts {
		docs[i] = models.Document{
			ID:       uuid.NewString(),
			Position: i,
			Content:  text,
		}
	}
	return docs
}

// Load builds the corpus for this run. With no directory configured it
// returns the built-in documents; otherwise every supported file under the
// directory is parsed and chunked, one document per chunk. WalkDir visits
// files in lexical order, so positions are stable across runs.
func Load(cfg *config.CorpusConfig) ([]models.Document, error) {
	if cfg.Dir == "" {
		return DefaultDocuments(), nil
	}

	var docs []models.Document
	err := filepath.WalkDir(cfg.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !supportedFile(path) {
			return nil
		}
		chunks, err := parseFile(path, cfg)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		for _, chunk := range chunks {
			content := strings.TrimSpace(chunk.Content)
			if content == "" {
				continue
			}
			docs = append(docs, models.Document{
				ID:       uuid.NewString(),
				Position: len(docs),
				Content:  content,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found in %s", cfg.Dir)
	}
	return docs, nil
}

func supportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".pdf", ".docx", ".pptx", ".xlsx", ".ods":
		return true
	}
	return false
}
