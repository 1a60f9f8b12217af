package annotation

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Header is a SimpleAnnotation without its details. It is decoded first so
// that filtered-out input data never has its details parsed.
type Header struct {
	ProjectID       string  `json:"project_id"`
	TaskID          string  `json:"task_id"`
	TaskStatus      string  `json:"task_status"`
	TaskPhase       string  `json:"task_phase"`
	TaskPhaseStage  int     `json:"task_phase_stage"`
	InputDataID     string  `json:"input_data_id"`
	InputDataName   string  `json:"input_data_name"`
	UpdatedDatetime *string `json:"updated_datetime"`
}

// PathError reports an annotation path that is neither a readable zip
// archive nor a directory.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("cannot read simple annotation at %q: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

type entry struct {
	name string
	open func() (io.ReadCloser, error)
}

// Walk calls fn for every input data JSON under annotationPath (a zip archive
// or an expanded directory) that passes f's task filters. Label filtering is
// left to the caller.
func Walk(annotationPath string, f Filter, fn func(SimpleAnnotation) error) error {
	info, err := os.Stat(annotationPath)
	if err != nil {
		return &PathError{Path: annotationPath, Err: err}
	}
	if info.IsDir() {
		return walkDir(annotationPath, f, fn)
	}
	return walkZip(annotationPath, f, fn)
}

func walkZip(zipPath string, f Filter, fn func(SimpleAnnotation) error) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return &PathError{Path: zipPath, Err: err}
	}
	defer r.Close()
	for _, zf := range r.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		e := entry{name: zf.Name, open: zf.Open}
		if err := visit(e, f, fn); err != nil {
			return err
		}
	}
	return nil
}

func walkDir(root string, f Filter, fn func(SimpleAnnotation) error) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		return visit(entry{
			name: filepath.ToSlash(rel),
			open: func() (io.ReadCloser, error) { return os.Open(p) },
		}, f, fn)
	})
}

func visit(e entry, f Filter, fn func(SimpleAnnotation) error) error {
	if !strings.EqualFold(path.Ext(e.name), ".json") {
		return nil
	}
	if dir := path.Base(path.Dir(e.name)); dir != "." && dir != "/" && !f.MatchTaskID(dir) {
		return nil
	}
	rc, err := e.open()
	if err != nil {
		return fmt.Errorf("open %s: %w", e.name, err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", e.name, err)
	}
	var h Header
	if err := json.Unmarshal(data, &h); err != nil {
		return fmt.Errorf("decode %s: %w", e.name, err)
	}
	if !f.MatchHeader(h) {
		return nil
	}
	var anno SimpleAnnotation
	if err := json.Unmarshal(data, &anno); err != nil {
		return fmt.Errorf("decode %s: %w", e.name, err)
	}
	return fn(anno)
}
