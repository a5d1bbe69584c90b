package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// Artifacts resolves the well-known artifact paths the sequencer depends on.
// Path layout is a fixed contract between the stages and the sequencer.
type Artifacts struct {
	DataDir   string
	OutputDir string
}

// Signals is the collected-signals bundle written by the collect stage
func (a Artifacts) Signals() string {
	return filepath.Join(a.DataDir, "signals.json")
}

// Script is the generated script for a run date
func (a Artifacts) Script(date string) string {
	return filepath.Join(a.OutputDir, "scripts", date+".txt")
}

// Episode is the final audio artifact for a run date. Its existence doubles
// as the idempotent-skip check for re-runs within the same day.
func (a Artifacts) Episode(date string) string {
	return filepath.Join(a.OutputDir, "episodes", date+".mp3")
}

// FeedIndex is the podcast feed index regenerated by the publish stage
func (a Artifacts) FeedIndex() string {
	return filepath.Join(a.OutputDir, "feed.xml")
}

// ForStage maps a stage name to its declared output artifact
func (a Artifacts) ForStage(stage, date string) (string, error) {
	switch stage {
	case "collect":
		return a.Signals(), nil
	case "write":
		return a.Script(date), nil
	case "publish":
		return a.Episode(date), nil
	default:
		return "", fmt.Errorf("unknown stage %q", stage)
	}
}

// Validate checks the artifact exists and is non-empty. A zero-byte file
// means the producing stage lied about success.
func Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("artifact %s missing: %w", path, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("artifact %s is empty", path)
	}
	return nil
}
