package importer

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"seat-occupancy-backend/internal/apperr"
	"seat-occupancy-backend/internal/mapping"
	"seat-occupancy-backend/internal/sheet"
)

// Stage copies an uploaded spreadsheet into the upload directory and returns
// the id under which it can later be analyzed or executed.
func (p *Pipeline) Stage(fileName string, r io.Reader) (string, error) {
	if _, err := sheet.FormatOf(fileName); err != nil {
		return "", apperr.Validation("%v", err)
	}
	if err := os.MkdirAll(p.cfg.UploadDir, 0o755); err != nil {
		return "", apperr.IO(err, "failed to create upload directory")
	}

	fileID := uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
	path := filepath.Join(p.cfg.UploadDir, fileID)
	f, err := os.Create(path)
	if err != nil {
		return "", apperr.IO(err, "failed to stage upload")
	}

	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// drop partial files
		_ = os.Remove(path)
		return "", apperr.IO(err, "failed to stage upload")
	}
	return fileID, nil
}

// SweepStaged removes staged uploads last written before cutoff, i.e. files
// that were analyzed but never executed. Other files are left alone.
func (p *Pipeline) SweepStaged(cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(p.cfg.UploadDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, apperr.IO(err, "failed to list upload directory")
	}

	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !isStagedName(name) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(p.cfg.UploadDir, name)); err != nil && !os.IsNotExist(err) {
			p.log.WithError(err).WithField("file", name).Warn("failed to remove stale upload")
			continue
		}
		removed++
	}
	return removed, nil
}

// RunSweeper removes stale staged uploads every interval until ctx is done.
func (p *Pipeline) RunSweeper(ctx context.Context, interval time.Duration) {
	if p.cfg.StagedTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := p.SweepStaged(p.now().Add(-p.cfg.StagedTTL))
			if err != nil {
				p.log.WithError(err).Warn("upload sweep failed")
			} else if n > 0 {
				p.log.WithField("removed", n).Info("removed stale uploads")
			}
		case <-ctx.Done():
			return
		}
	}
}

func isStagedName(name string) bool {
	_, err := uuid.Parse(strings.TrimSuffix(name, filepath.Ext(name)))
	return err == nil
}

// stagedPath resolves a file id produced by Stage, rejecting anything that
// could point outside the upload directory.
func (p *Pipeline) stagedPath(fileID string) (string, error) {
	if filepath.Base(fileID) != fileID {
		return "", apperr.Validation("invalid file id %q", fileID)
	}
	if !isStagedName(fileID) {
		return "", apperr.Validation("invalid file id %q", fileID)
	}
	path := filepath.Join(p.cfg.UploadDir, fileID)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", apperr.NotFound("uploaded file %q not found", fileID)
		}
		return "", apperr.IO(err, "failed to stat uploaded file %q", fileID)
	}
	return path, nil
}

// AnalyzeFile reads a staged upload and suggests a mapping for it.
func (p *Pipeline) AnalyzeFile(fileID, fileName string) (*Analysis, error) {
	path, err := p.stagedPath(fileID)
	if err != nil {
		return nil, err
	}
	table, err := sheet.ReadFile(path)
	if err != nil {
		return nil, apperr.IO(err, "failed to read spreadsheet")
	}
	a := p.Analyze(fileName, table)
	a.FileID = fileID
	return a, nil
}

// ExecuteFile reconciles a staged upload and removes it afterwards. A file
// that cannot be read aborts the run before any row is applied.
func (p *Pipeline) ExecuteFile(ctx context.Context, fileID string, m mapping.Mapping) (*Result, error) {
	path, err := p.stagedPath(fileID)
	if err != nil {
		return nil, err
	}
	table, err := sheet.ReadFile(path)
	if err != nil {
		return nil, apperr.IO(err, "failed to read spreadsheet")
	}

	res, err := p.Execute(ctx, fileID, table, m)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(path); err != nil {
		p.log.WithError(err).WithField("file", fileID).Warn("failed to remove staged upload")
	}
	return res, nil
}

// ImportPath reconciles a spreadsheet read directly from disk.
func (p *Pipeline) ImportPath(ctx context.Context, path string, m mapping.Mapping) (*Result, error) {
	table, err := sheet.ReadFile(path)
	if err != nil {
		return nil, apperr.IO(err, "failed to read %s", path)
	}
	if m == nil {
		m = p.mapper.Suggest(table.Headers)
	}
	if len(m) == 0 {
		return nil, apperr.Validation("no column of %s could be mapped", filepath.Base(path))
	}
	return p.Execute(ctx, filepath.Base(path), table, m)
}
