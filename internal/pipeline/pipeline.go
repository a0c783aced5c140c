package pipeline

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/stronganchortech/bible-linker/internal/storage"
	"github.com/stronganchortech/bible-linker/internal/transform"
)

// Runner rewrites every HTML file under an input directory into Storage.
type Runner struct {
	Rewriter    *transform.Rewriter
	Storage     *storage.FSStorage
	Config      transform.Config
	Workers     int
	Logger      *slog.Logger
	FailuresDir string
	Force       bool

	mu       sync.Mutex
	status   Status
	failures []string
}

func (r *Runner) Run(ctx context.Context, inputDir string) error {
	if r.Rewriter == nil || r.Storage == nil {
		return errors.New("pipeline runner missing dependencies")
	}

	r.mu.Lock()
	r.status = Status{Stage: "scanning"}
	r.failures = nil
	if r.FailuresDir != "" {
		r.status.FailuresPath = filepath.Join(r.FailuresDir, "failures.log")
	}
	failPath := r.status.FailuresPath
	r.mu.Unlock()

	// Create the failure log up front so users can tail it during processing.
	if failPath != "" {
		_ = os.MkdirAll(filepath.Dir(failPath), 0o755)
		_ = os.WriteFile(failPath, nil, 0o644)
	}

	files, err := FindInputs(inputDir)
	if err != nil {
		r.setStage("error")
		return fmt.Errorf("scan %s: %w", inputDir, err)
	}

	r.mu.Lock()
	r.status.Stage = "processing"
	r.status.Total = len(files)
	r.mu.Unlock()
	if r.Logger != nil {
		r.Logger.Info("rewriting files", "input", inputDir, "output", r.Storage.Root, "files", len(files))
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	jobs := make(chan InputFile)
	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				if err := r.processFile(ctx, file); err != nil {
					errOnce.Do(func() { firstErr = err })
				}
				r.mu.Lock()
				r.status.Done++
				r.mu.Unlock()
			}
		}()
	}

feed:
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- file:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr == nil {
		firstErr = ctx.Err()
	}
	if firstErr != nil {
		r.setStage("error")
	} else {
		r.setStage("done")
	}

	s := r.Status()
	if r.Logger != nil {
		r.Logger.Info("batch done", "total", s.Total, "skipped", s.Skipped, "errors", s.Errors, "links", s.Links)
		if s.Errors > 0 {
			r.Logger.Warn("batch completed with failures", "count", s.Errors, "log", s.FailuresPath)
		}
	}
	return firstErr
}

// Status returns a snapshot of the current run.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Failures returns the failure messages recorded by the current run.
func (r *Runner) Failures() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.failures)
}

func (r *Runner) processFile(ctx context.Context, file InputFile) error {
	if r.Logger != nil {
		r.Logger.Debug("processing", "path", file.RelativePath, "symlink", file.IsSymlink)
	}
	err := r.rewriteFile(ctx, file)
	if err != nil {
		var re *RewriteError
		if errors.As(err, &re) {
			r.recordFailure("rewrite", re.Path, re.Unwrap())
			return nil
		}
		return err
	}
	return nil
}

// rewriteFile writes the rewritten form of one input. When the rewrite
// fails the original bytes are written instead and a *RewriteError is
// returned.
func (r *Runner) rewriteFile(ctx context.Context, file InputFile) error {
	outPath, err := OutputPath(file.RelativePath)
	if err != nil {
		return &RewriteError{Path: file.RelativePath, Err: err}
	}

	if file.IsSymlink {
		if err := r.Storage.WriteSymlink(ctx, outPath, ConvertSymlinkTarget(file.SymlinkTarget)); err != nil {
			return fmt.Errorf("write symlink %s: %w", outPath, err)
		}
		return nil
	}

	data, err := readInput(file.Path)
	if err != nil {
		return &RewriteError{Path: file.RelativePath, Err: err}
	}

	key := CacheKey(data, r.Config)
	if !r.Force && r.Storage.CheckCache(outPath, key) {
		if r.Logger != nil {
			r.Logger.Debug("skipping unchanged file", "path", file.RelativePath)
		}
		r.mu.Lock()
		r.status.Skipped++
		r.mu.Unlock()
		return nil
	}

	res, rerr := r.Rewriter.Rewrite(string(data), r.Config)
	if rerr != nil {
		if err := r.Storage.WriteHTML(ctx, outPath, data); err != nil {
			return fmt.Errorf("write html %s: %w", outPath, err)
		}
		return &RewriteError{Path: file.RelativePath, Err: rerr}
	}

	if err := r.Storage.WriteHTML(ctx, outPath, []byte(res.HTML)); err != nil {
		return fmt.Errorf("write html %s: %w", outPath, err)
	}
	if err := r.Storage.WriteCache(ctx, outPath, key); err != nil {
		return fmt.Errorf("write cache for %s: %w", outPath, err)
	}

	r.mu.Lock()
	r.status.Links += res.Links
	r.mu.Unlock()
	return nil
}

// FindInputs lists the HTML files and symlinks under root in lexical
// order. Hidden directories are not entered.
func FindInputs(root string) ([]InputFile, error) {
	var files []InputFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsHTMLInput(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		file := InputFile{Path: path, RelativePath: filepath.ToSlash(rel)}
		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("read symlink %s: %w", path, err)
			}
			file.IsSymlink = true
			file.SymlinkTarget = target
		}
		files = append(files, file)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// CacheKey fingerprints an input together with the settings that shape its
// output, so a change of version or site invalidates cached files. Settings
// left empty are keyed as their defaults.
func CacheKey(content []byte, cfg transform.Config) string {
	cfg = cfg.WithDefaults()
	h := blake3.New()
	_, _ = h.Write(content)
	for _, field := range []string{cfg.Version, string(cfg.Site), cfg.Charset} {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (r *Runner) setStage(stage string) {
	r.mu.Lock()
	r.status.Stage = stage
	r.mu.Unlock()
}

func (r *Runner) recordFailure(stage string, path string, err error) {
	message := strings.TrimSpace(fmt.Sprintf("%s %s: %v", stage, path, err))
	r.mu.Lock()
	r.failures = append(r.failures, message)
	r.status.Errors++
	failPath := r.status.FailuresPath
	r.mu.Unlock()

	// Append to the failure log immediately so users can tail it.
	if failPath != "" {
		f, ferr := os.OpenFile(failPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if ferr == nil {
			_, _ = fmt.Fprintln(f, message)
			_ = f.Close()
		}
	}

	if r.Logger != nil {
		r.Logger.Warn("pipeline failure", "stage", stage, "path", path, "error", err)
	}
}
