package archive

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Info holds metadata about an existing backup file.
type Info struct {
	Path      string
	Filename  string
	Size      int64
	Timestamp string // from the manifest, or file mod time
	Story     string
	Files     int
}

// List scans the game directory's backups for tar.gz files and
// returns them newest-first.
func List(gameDir string) ([]Info, error) {
	pattern := filepath.Join(gameDir, backupSubdir, "*.tar.gz")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("archive: glob %s: %w", pattern, err)
	}

	var backups []Info
	for _, path := range matches {
		st, err := os.Stat(path)
		if err != nil {
			continue
		}
		bi := Info{
			Path:      path,
			Filename:  filepath.Base(path),
			Size:      st.Size(),
			Timestamp: st.ModTime().UTC().Format("2006-01-02 15:04:05"),
		}
		if m, err := readManifest(path); err == nil {
			bi.Timestamp = m.Timestamp
			bi.Story = m.Story
			bi.Files = len(m.Files)
		}
		backups = append(backups, bi)
	}

	// RFC3339 timestamps sort lexically.
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp > backups[j].Timestamp
	})
	return backups, nil
}

// readManifest pulls manifest.json out of a backup.
func readManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if hdr.Name != "manifest.json" {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return &m, nil
	}
	return nil, fmt.Errorf("archive: no manifest in %s", path)
}
