package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/singladno/marinaobuv-sub001/internal/model"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

type document struct {
	Categories []model.Category `json:"categories" yaml:"categories"`
}

// loadRecords reads records from path, or from the command's stdin for "-".
func loadRecords(cmd *cobra.Command, path string) ([]model.Category, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return parseRecords(data, strings.ToLower(filepath.Ext(path)))
}

func parseRecords(data []byte, ext string) ([]model.Category, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []model.Category{}, nil
	}

	isJSON := ext == ".json" || (ext != ".yaml" && ext != ".yml" && (trimmed[0] == '[' || trimmed[0] == '{'))
	unmarshal := yaml.Unmarshal
	if isJSON {
		unmarshal = json.Unmarshal
	}

	var list []model.Category
	if err := unmarshal(trimmed, &list); err == nil {
		return list, nil
	}
	var doc document
	if err := unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}
	return doc.Categories, nil
}
