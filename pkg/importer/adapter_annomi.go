// CLAUDE:SUMMARY AnnoMI source adapters: full and simple CSV releases, plain or zipped, validated against the required columns.
package importer

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hazyhaar/annomi/pkg/tabular"
)

const annomiRepo = "https://raw.githubusercontent.com/uccollab/AnnoMI/main/"

func init() {
	Register(&csvAdapter{
		id:          "annomi-full",
		fileName:    "AnnoMI-full.csv",
		description: "AnnoMI full release (utterance-level annotations)",
		url:         annomiRepo + "AnnoMI-full.csv",
		license:     "see upstream repository",
		required:    []string{"topic", "utterance_text", "client_talk_type", "main_therapist_behaviour"},
	})
	Register(&csvAdapter{
		id:          "annomi-simple",
		fileName:    "AnnoMI-simple.csv",
		description: "AnnoMI simple release (merged annotator labels)",
		url:         annomiRepo + "AnnoMI-simple.csv",
		license:     "see upstream repository",
		required:    []string{"topic", "utterance_text"},
	})
}

// csvAdapter fetches a single CSV, directly or from a ZIP archive, and checks
// its header before publishing it.
type csvAdapter struct {
	id, fileName, description, url, license string
	required                                []string
	format                                  tabular.Format
}

func (a *csvAdapter) ID() string          { return a.id }
func (a *csvAdapter) FileName() string    { return a.fileName }
func (a *csvAdapter) Description() string { return a.description }
func (a *csvAdapter) DefaultURL() string  { return a.url }
func (a *csvAdapter) License() string     { return a.license }

func (a *csvAdapter) Fetch(ctx context.Context, sourceURL, outputDir string) (*FetchManifest, error) {
	dlDir := filepath.Join(outputDir, "_download", a.id)
	if err := ensureDir(dlDir); err != nil {
		return nil, err
	}
	defer os.RemoveAll(dlDir)

	name := path.Base(strings.SplitN(sourceURL, "?", 2)[0])
	if name == "" || name == "." || name == "/" {
		name = a.fileName
	}
	dlPath := filepath.Join(dlDir, name)
	if err := downloadFile(ctx, sourceURL, dlPath); err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}

	csvPath := dlPath
	if strings.EqualFold(filepath.Ext(name), ".zip") {
		files, err := unzipFile(dlPath, dlDir)
		if err != nil {
			return nil, fmt.Errorf("unzip: %w", err)
		}
		csvPath = pickCSV(files, a.fileName)
		if csvPath == "" {
			return nil, fmt.Errorf("%s: no csv file in archive", a.id)
		}
	}

	rows, err := a.validate(csvPath)
	if err != nil {
		return nil, err
	}

	dest := filepath.Join(outputDir, a.fileName)
	if err := os.Rename(csvPath, dest); err != nil {
		return nil, fmt.Errorf("move %s: %w", a.fileName, err)
	}
	sum, err := fileSHA256(dest)
	if err != nil {
		return nil, err
	}

	m := &FetchManifest{
		Source:    a.id,
		URL:       sourceURL,
		License:   a.license,
		File:      a.fileName,
		Rows:      rows,
		SHA256:    sum,
		FetchedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := writeManifest(outputDir, m); err != nil {
		return nil, err
	}
	return m, nil
}

// validate parses the whole file and checks the required columns.
func (a *csvAdapter) validate(path string) (int, error) {
	t, err := tabular.ReadFile(path, a.format)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", a.id, err)
	}
	for _, col := range a.required {
		if _, ok := t.Column(col); !ok {
			return 0, fmt.Errorf("%s: missing column %q", a.id, col)
		}
	}
	if len(t.Rows) == 0 {
		return 0, fmt.Errorf("%s: no data rows", a.id)
	}
	return len(t.Rows), nil
}

// pickCSV prefers the archive entry named want, then the first .csv.
func pickCSV(files []string, want string) string {
	var first string
	for _, f := range files {
		base := filepath.Base(f)
		if base == want {
			return f
		}
		if first == "" && strings.EqualFold(filepath.Ext(base), ".csv") {
			first = f
		}
	}
	return first
}
