package recorder

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

// JSONL appends one JSON line per analysis to a file per UTC day, dir/2006-01-02.jsonl.
type JSONL struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

var (
	_ interfaces.Recorder = (*JSONL)(nil)
	_ Maintainer          = (*JSONL)(nil)
)

func NewJSONL(dir string) *JSONL {
	if dir == "" {
		dir = "logs/analyses"
	}
	return &JSONL{dir: dir, now: time.Now}
}

func (j *JSONL) dailyFilepath(t time.Time) string {
	return filepath.Join(j.dir, t.UTC().Format("2006-01-02")+".jsonl")
}

func (j *JSONL) Record(ctx context.Context, r types.RecommendationResult) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	p := j.dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(newEntry(now, r))
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// Maintain gzips daily files last modified more than retentionDays ago.
func (j *JSONL) Maintain(ctx context.Context, retentionDays int) (int, error) {
	return j.CompressOlder(ctx, retentionDays)
}

// CompressOlder replaces each .jsonl file older than retentionDays with a .jsonl.gz copy.
func (j *JSONL) CompressOlder(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	cutoff := j.now().AddDate(0, 0, -retentionDays)
	compressed := 0
	err := filepath.WalkDir(j.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ".jsonl" {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		// an earlier run may have compressed but failed to remove the original
		if _, err := os.Stat(gz); err == nil {
			_ = os.Remove(p)
			return nil
		}
		if err := gzipFile(p, gz); err != nil {
			logger.Warn(ctx, "Failed to compress analysis log", "path", p, "error", err)
			return nil
		}
		compressed++
		return os.Remove(p)
	})
	return compressed, err
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}

func (j *JSONL) Close() error { return nil }
