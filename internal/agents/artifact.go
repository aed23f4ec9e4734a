package agents

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ArtifactWriter persists analysis reports as one markdown file per
// workflow under a fixed directory. Reports are write-once from the
// system's point of view; nothing in the backend reads them back.
type ArtifactWriter struct {
	dir string
}

func NewArtifactWriter(dir string) *ArtifactWriter {
	return &ArtifactWriter{dir: dir}
}

func (w *ArtifactWriter) Write(workflowID, content string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	path := filepath.Join(w.dir, workflowID+".md")

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	log.Debug().Str("path", path).Msg("Analysis artifact written")
	return path, nil
}
