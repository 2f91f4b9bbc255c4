// Package archive creates and restores backups of a game directory:
// the story configuration, savegame and account databases, and any
// text resources. Backups are tar.gz files carrying a manifest with
// per-file checksums.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ManifestVersion is bumped when the backup layout changes.
const ManifestVersion = 1

// backupSubdir is where backups land inside a game directory, and is
// excluded from later backups.
const backupSubdir = "backups"

// Manifest describes the contents of a backup.
type Manifest struct {
	Version   int                  `json:"version"`
	Engine    string               `json:"engine"`
	Timestamp string               `json:"timestamp"`
	Story     string               `json:"story"`
	Files     map[string]FileEntry `json:"files"`
}

// FileEntry records checksum and size for one backed-up file.
type FileEntry struct {
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

// backupExts lists the file suffixes a backup picks up from the game
// directory. Databases first, then config and text resources.
var backupExts = map[string]bool{
	".db":   true,
	".yaml": true,
	".yml":  true,
	".txt":  true,
	".md":   true,
}

// Create writes a tar.gz backup of the game directory into its
// backups/ subdirectory and returns the backup path. Story names the
// story for the manifest.
func Create(gameDir, story string) (string, error) {
	outDir := filepath.Join(gameDir, backupSubdir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("archive: create %s: %w", outDir, err)
	}

	name := fmt.Sprintf("backup-%s.tar.gz", time.Now().Format("20060102-150405"))
	outPath := filepath.Join(outDir, name)
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("archive: create %s: %w", outPath, err)
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	defer gw.Close()
	tw := tar.NewWriter(gw)
	defer tw.Close()

	manifest := Manifest{
		Version:   ManifestVersion,
		Engine:    "storyloom",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Story:     story,
		Files:     map[string]FileEntry{},
	}

	err = filepath.Walk(gameDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == backupSubdir {
				return filepath.SkipDir
			}
			return nil
		}
		if !backupExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(gameDir, path)
		if err != nil {
			return err
		}
		archName := filepath.ToSlash(rel)
		entry, err := addFile(tw, path, archName)
		if err != nil {
			return err
		}
		manifest.Files[archName] = entry
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("archive: walk %s: %w", gameDir, err)
	}

	// Manifest goes last so readers can stream everything before it.
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("archive: marshal manifest: %w", err)
	}
	if err := tw.WriteHeader(&tar.Header{
		Name:    "manifest.json",
		Size:    int64(len(data)),
		Mode:    0o644,
		ModTime: time.Now(),
	}); err != nil {
		return "", fmt.Errorf("archive: manifest header: %w", err)
	}
	if _, err := tw.Write(data); err != nil {
		return "", fmt.Errorf("archive: write manifest: %w", err)
	}
	return outPath, nil
}

// addFile streams one file into the tar while hashing it.
func addFile(tw *tar.Writer, srcPath, archName string) (FileEntry, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return FileEntry{}, fmt.Errorf("archive: open %s: %w", srcPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return FileEntry{}, fmt.Errorf("archive: stat %s: %w", srcPath, err)
	}
	if err := tw.WriteHeader(&tar.Header{
		Name:    archName,
		Size:    info.Size(),
		Mode:    0o644,
		ModTime: info.ModTime(),
	}); err != nil {
		return FileEntry{}, fmt.Errorf("archive: header %s: %w", archName, err)
	}

	h := sha256.New()
	written, err := io.Copy(tw, io.TeeReader(f, h))
	if err != nil {
		return FileEntry{}, fmt.Errorf("archive: write %s: %w", archName, err)
	}
	return FileEntry{SHA256: hex.EncodeToString(h.Sum(nil)), Size: written}, nil
}
