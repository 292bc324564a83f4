package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ArchiveExport files a processed export under archiveDir/<YYYY-MM>/ using
// rec for the month, content hash and run id. Re-uploads of an already
// archived export are discarded and the archived path is returned. A
// different export with the same name is stored as <name>-<run><ext>.
func ArchiveExport(srcPath string, archiveDir string, rec IngestionRecord) (string, error) {
	if strings.TrimSpace(archiveDir) == "" {
		return "", fmt.Errorf("archive dir is empty")
	}
	if rec.SHA256 == "" {
		sum, err := fileSHA256(srcPath)
		if err != nil {
			return "", err
		}
		rec.SHA256 = sum
	}
	dstDir := filepath.Join(archiveDir, rec.IngestedAt.Format("2006-01"))
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", err
	}

	base := filepath.Base(srcPath)
	dstPath := filepath.Join(dstDir, base)
	if _, err := os.Stat(dstPath); err == nil {
		existing, err := fileSHA256(dstPath)
		if err != nil {
			return "", err
		}
		if existing == rec.SHA256 {
			return dstPath, os.Remove(srcPath)
		}
		ext := filepath.Ext(base)
		dstPath = filepath.Join(dstDir, fmt.Sprintf("%s-%s%s", strings.TrimSuffix(base, ext), runSuffix(rec.RunID), ext))
	}

	if err := os.Rename(srcPath, dstPath); err == nil {
		return dstPath, nil
	}
	// Rename fails across devices.
	if err := copyFile(srcPath, dstPath); err != nil {
		return "", err
	}
	if err := os.Remove(srcPath); err != nil {
		return "", err
	}
	return dstPath, nil
}

func runSuffix(runID string) string {
	if runID == "" {
		runID = uuid.NewString()
	}
	if len(runID) > 8 {
		runID = runID[:8]
	}
	return runID
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func copyFile(srcPath, dstPath string) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dstPath)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dstPath)
		return err
	}
	return nil
}
