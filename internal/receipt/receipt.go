// Package receipt turns receipt images into ledger records.
//
// Text recognition itself is done by an external tool. SidecarScanner reads
// the structured result that tool leaves next to the image.
package receipt

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/tally/internal/model"
)

// ErrNoResult means the scanner produced nothing for the image.
var ErrNoResult = errors.New("no receipt data")

// Scanner extracts one expense from a receipt image.
type Scanner interface {
	Scan(ctx context.Context, imagePath string) (model.Expense, error)
}

// Fields is the YAML document an OCR tool writes for one receipt.
type Fields struct {
	Name     string `yaml:"name"`
	Amount   string `yaml:"amount"`
	Category string `yaml:"category"`
	Date     string `yaml:"date"`
}

// SidecarScanner reads <image>.yaml (or <image>.yml) beside the image.
// DefaultCategory is used when the sidecar leaves category empty.
type SidecarScanner struct {
	DefaultCategory string
}

var sidecarExts = []string{".yaml", ".yml"}

// Scan implements Scanner.
func (s SidecarScanner) Scan(ctx context.Context, imagePath string) (model.Expense, error) {
	if err := ctx.Err(); err != nil {
		return model.Expense{}, err
	}
	if _, err := os.Stat(imagePath); err != nil {
		return model.Expense{}, fmt.Errorf("receipt image: %w", err)
	}

	data, path, err := readSidecar(imagePath)
	if err != nil {
		return model.Expense{}, err
	}

	var f Fields
	if err := yaml.Unmarshal(data, &f); err != nil {
		return model.Expense{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if f == (Fields{}) {
		return model.Expense{}, fmt.Errorf("%s: %w", path, ErrNoResult)
	}
	if strings.TrimSpace(f.Category) == "" {
		f.Category = s.DefaultCategory
	}

	e, err := model.NewExpense(f.Name, f.Category, f.Amount, f.Date)
	if err != nil {
		return model.Expense{}, fmt.Errorf("receipt %s: %w", filepath.Base(imagePath), err)
	}
	return e, nil
}

func readSidecar(imagePath string) ([]byte, string, error) {
	for _, ext := range sidecarExts {
		path := imagePath + ext
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, path, fmt.Errorf("reading %s: %w", path, err)
		}
		return data, path, nil
	}
	return nil, "", fmt.Errorf("%s: %w", filepath.Base(imagePath), ErrNoResult)
}
