package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"quiz-room-service/internal/domain"
)

// ThemeLoader reads theme question files from a directory. A theme named
// "Minecraft" resolves to <dir>/minecraft.json containing a JSON array
// of questions, the layout the frontend ships its question packs in.
type ThemeLoader struct {
	dir string
}

func NewThemeLoader(dir string) *ThemeLoader {
	return &ThemeLoader{dir: dir}
}

func (l *ThemeLoader) LoadTheme(_ context.Context, name string) ([]domain.Question, error) {
	path := filepath.Join(l.dir, strings.ToLower(name)+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrThemeNotFound
		}
		return nil, fmt.Errorf("read theme %s: %w", name, err)
	}

	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse theme %s: %w", name, err)
	}
	return questions, nil
}
