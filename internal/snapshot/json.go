package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"modelcatalog/internal/components/telemetry"
	"os"
	"path/filepath"
)

const (
	report_json_load = "json.load"
	report_json_save = "json.save"
)

// JSONFile keeps the snapshot in a single indented json file.
type JSONFile struct {
	path string
	tel  telemetry.API
}

func NewJSONFile(path string, tel telemetry.API) JSONFile {
	return JSONFile{
		path: path,
		tel:  telemetry.NewScopedAPI("snapshot", tel),
	}
}

func (f JSONFile) Load(ctx context.Context) (Document, error) {
	contents, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Document{}, ErrNoSnapshot
	}
	if err != nil {
		f.tel.ReportBroken(report_json_load, err, f.path)
		return Document{}, err
	}

	var doc Document
	err = json.Unmarshal(contents, &doc)
	if err != nil {
		f.tel.ReportBroken(report_json_load, err, f.path)
		return Document{}, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return doc, nil
}

// Save writes to a temporary file next to the target and renames it over
// the target, readers never observe a partial file.
func (f JSONFile) Save(ctx context.Context, doc Document) error {
	contents, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		f.tel.ReportBroken(report_json_save, err, dir)
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		f.tel.ReportBroken(report_json_save, err, dir)
		return err
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(contents)
	if err == nil {
		err = tmp.Sync()
	}
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), f.path)
	}
	if err != nil {
		f.tel.ReportBroken(report_json_save, err, f.path)
		return err
	}
	return nil
}

func (JSONFile) Close() error {
	return nil
}
