package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileStore reads records from .json, .yaml and .yml files. Directories are
// walked recursively. A file may hold a list of records, a single record, or
// an object keyed by record ID.
type FileStore struct {
	CasePaths   []string
	PolicyPaths []string
}

// NewFileStore creates a FileStore.
func NewFileStore(casePaths, policyPaths []string) *FileStore {
	return &FileStore{CasePaths: casePaths, PolicyPaths: policyPaths}
}

func (s *FileStore) Cases(ctx context.Context) ([]CaseRecord, error) {
	recs, err := readAll[CaseRecord](ctx, s.CasePaths)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		if recs[i].ID == "" {
			recs[i].ID = fmt.Sprintf("case_%d", i)
		}
	}
	return recs, nil
}

func (s *FileStore) Policies(ctx context.Context) ([]PolicyRecord, error) {
	recs, err := readAll[PolicyRecord](ctx, s.PolicyPaths)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		if recs[i].ID == "" {
			recs[i].ID = fmt.Sprintf("policy_%d", i)
		}
	}
	return recs, nil
}

func readAll[T any](ctx context.Context, paths []string) ([]T, error) {
	files, err := expand(paths)
	if err != nil {
		return nil, err
	}
	var out []T
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		recs, err := decode[T](f, data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", f, err)
		}
		out = append(out, recs...)
	}
	return out, nil
}

func expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && supported(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func decode[T any](path string, data []byte) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var unmarshal func([]byte, any) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		unmarshal = json.Unmarshal
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}

	var list []T
	if err := unmarshal(data, &list); err == nil {
		return list, nil
	}

	var probe map[string]any
	if err := unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if _, single := probe["title"]; single {
		var rec T
		if err := unmarshal(data, &rec); err != nil {
			return nil, err
		}
		return []T{rec}, nil
	}

	var keyed map[string]T
	if err := unmarshal(data, &keyed); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, keyed[k])
	}
	return out, nil
}
