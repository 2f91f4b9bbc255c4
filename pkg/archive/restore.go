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
)

// Result summarizes a completed restore.
type Result struct {
	Story         string
	FilesRestored int
	Skipped       []string
}

// Restore extracts a backup into the game directory after verifying
// every checksum. Existing files are overwritten only when overwrite
// is set; otherwise they are reported in Result.Skipped. Run this with
// the server stopped, the databases must not be open.
func Restore(backupPath, gameDir string, overwrite bool) (*Result, error) {
	tmpDir, err := os.MkdirTemp("", "storyloom-restore-*")
	if err != nil {
		return nil, fmt.Errorf("restore: temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := extract(backupPath, tmpDir); err != nil {
		return nil, fmt.Errorf("restore: extract: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "manifest.json"))
	if err != nil {
		return nil, fmt.Errorf("restore: no manifest in %s", backupPath)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("restore: parse manifest: %w", err)
	}
	if manifest.Version != ManifestVersion {
		return nil, fmt.Errorf("restore: unsupported backup version %d", manifest.Version)
	}

	for archName, entry := range manifest.Files {
		extracted := filepath.Join(tmpDir, filepath.FromSlash(archName))
		ok, err := checksumMatches(extracted, entry.SHA256)
		if err != nil {
			return nil, fmt.Errorf("restore: checksum %s: %w", archName, err)
		}
		if !ok {
			return nil, fmt.Errorf("restore: checksum mismatch for %s, backup is corrupt", archName)
		}
	}

	result := &Result{Story: manifest.Story}
	for archName := range manifest.Files {
		src := filepath.Join(tmpDir, filepath.FromSlash(archName))
		dst := filepath.Join(gameDir, filepath.FromSlash(archName))
		if _, err := os.Stat(dst); err == nil && !overwrite {
			result.Skipped = append(result.Skipped, archName)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return nil, fmt.Errorf("restore: create dir for %s: %w", archName, err)
		}
		if err := copyFile(src, dst); err != nil {
			return nil, fmt.Errorf("restore: copy %s: %w", archName, err)
		}
		result.FilesRestored++
	}
	return result, nil
}

// extract unpacks a tar.gz into destDir, refusing entries that would
// escape it.
func extract(backupPath, destDir string) error {
	f, err := os.Open(backupPath)
	if err != nil {
		return err
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		target := filepath.Join(destDir, filepath.FromSlash(hdr.Name))
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(destDir)) {
			return fmt.Errorf("invalid entry: %s", hdr.Name)
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.Create(target)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			out.Close()
		}
	}
}

func checksumMatches(path, expected string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return false, err
	}
	return hex.EncodeToString(h.Sum(nil)) == expected, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
