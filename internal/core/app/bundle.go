package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"crosscheck/internal/core/errors"
	"crosscheck/internal/core/ports"
)

const maxBundleSizeBytes = 8 << 20 // 8 MiB

// bundleSchemaJSON is the contract for task bundle documents. Text can
// be supplied inline or by file reference ("before_path"/"after_path"),
// resolved relative to the bundle's directory.
const bundleSchemaJSON = `{
  "type": "object",
  "required": ["version", "files"],
  "additionalProperties": false,
  "properties": {
    "version": {"type": "integer", "enum": [1]},
    "files": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["path", "tasks"],
        "additionalProperties": false,
        "properties": {
          "path": {"type": "string", "minLength": 1},
          "tasks": {
            "type": "object",
            "minProperties": 2,
            "additionalProperties": {
              "type": "object",
              "additionalProperties": false,
              "properties": {
                "before": {"type": "string"},
                "before_path": {"type": "string", "minLength": 1},
                "after": {"type": "string"},
                "after_path": {"type": "string", "minLength": 1}
              }
            }
          }
        }
      }
    }
  }
}`

var bundleSchema = mustBundleSchema()

func mustBundleSchema() *openapi3.Schema {
	var schema openapi3.Schema
	if err := schema.UnmarshalJSON([]byte(bundleSchemaJSON)); err != nil {
		panic(fmt.Sprintf("invalid bundle schema: %v", err))
	}
	return &schema
}

type bundleDoc struct {
	Version int          `json:"version"`
	Files   []bundleFile `json:"files"`
}

type bundleFile struct {
	Path  string                `json:"path"`
	Tasks map[string]bundleTask `json:"tasks"`
}

type bundleTask struct {
	Before     string `json:"before"`
	BeforePath string `json:"before_path"`
	After      string `json:"after"`
	AfterPath  string `json:"after_path"`
}

// LoadBundle reads, schema-validates and resolves a task bundle file
// into an analysis request.
func (a *App) LoadBundle(path string) (ports.AnalyzeRequest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ports.AnalyzeRequest{}, errors.AddContext(
			errors.Wrap(err, errors.CodeNotFound, "bundle not readable"), errors.CtxPath, path)
	}
	if info.Size() > maxBundleSizeBytes {
		return ports.AnalyzeRequest{}, errors.AddContext(
			errors.New(errors.CodeValidationError,
				fmt.Sprintf("bundle exceeds %d bytes", maxBundleSizeBytes)), errors.CtxPath, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ports.AnalyzeRequest{}, errors.AddContext(
			errors.Wrap(err, errors.CodeNotFound, "read bundle"), errors.CtxPath, path)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return ports.AnalyzeRequest{}, errors.AddContext(
			errors.Wrap(err, errors.CodeValidationError, "bundle is not valid JSON"), errors.CtxPath, path)
	}
	if err := bundleSchema.VisitJSON(raw); err != nil {
		return ports.AnalyzeRequest{}, errors.AddContext(
			errors.Wrap(err, errors.CodeValidationError, "bundle failed schema validation"), errors.CtxPath, path)
	}

	var doc bundleDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return ports.AnalyzeRequest{}, errors.AddContext(
			errors.Wrap(err, errors.CodeValidationError, "decode bundle"), errors.CtxPath, path)
	}

	baseDir := filepath.Dir(path)
	req := ports.AnalyzeRequest{BundlePath: path}
	for _, file := range doc.Files {
		changes := make(map[string]ports.TaskChange, len(file.Tasks))
		for taskID, task := range file.Tasks {
			before, err := a.resolveText(baseDir, task.Before, task.BeforePath, file.Path, taskID, "before")
			if err != nil {
				return ports.AnalyzeRequest{}, err
			}
			after, err := a.resolveText(baseDir, task.After, task.AfterPath, file.Path, taskID, "after")
			if err != nil {
				return ports.AnalyzeRequest{}, err
			}
			changes[taskID] = ports.TaskChange{Before: before, After: after}
		}
		req.Files = append(req.Files, ports.FileChangeSet{Path: file.Path, Tasks: changes})
	}
	return req, nil
}

// resolveText returns the inline text or the referenced file's content.
// Supplying both forms for one version is rejected.
func (a *App) resolveText(baseDir, inline, ref, filePath, taskID, version string) (string, error) {
	if inline != "" && ref != "" {
		err := errors.New(errors.CodeValidationError,
			fmt.Sprintf("%s text given both inline and by reference", version))
		err = errors.AddContext(err, errors.CtxPath, filePath)
		err = errors.AddContext(err, errors.CtxTask, taskID)
		return "", err
	}
	if ref == "" {
		return inline, nil
	}

	resolved := ref
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(baseDir, resolved)
	}
	if !strings.HasPrefix(filepath.Clean(resolved), filepath.Clean(baseDir)+string(filepath.Separator)) && !filepath.IsAbs(ref) {
		return "", errors.AddContext(
			errors.New(errors.CodeValidationError, "referenced file escapes the bundle directory"),
			errors.CtxPath, ref)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", errors.AddContext(
			errors.Wrap(err, errors.CodeNotFound, "referenced file not readable"), errors.CtxPath, ref)
	}
	if info.Size() > a.Config.Limits.MaxFileBytes {
		return "", errors.AddContext(
			errors.New(errors.CodeValidationError,
				fmt.Sprintf("referenced file exceeds %d bytes", a.Config.Limits.MaxFileBytes)),
			errors.CtxPath, ref)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", errors.AddContext(
			errors.Wrap(err, errors.CodeNotFound, "read referenced file"), errors.CtxPath, ref)
	}
	return string(data), nil
}
