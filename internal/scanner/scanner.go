// Package scanner implements the parallel, order-independent directory
// traversal that produces the raw entry records a Snapshot is built
// from. Scan order is unspecified; the snapshot builder imposes order.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path"
	"runtime"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/galdi-project/galdi/internal/checksum"
	"github.com/galdi-project/galdi/internal/event"
	"github.com/galdi-project/galdi/internal/galerr"
	"github.com/galdi-project/galdi/internal/snapshot"
	"github.com/galdi-project/galdi/internal/stats"
)

// Config controls scanner behavior. FollowSymlinks is intentionally not a
// field — it is fixed false by spec section 4.3, which is what keeps the
// traversal structurally acyclic.
type Config struct {
	Root        string
	Algorithm   checksum.Algorithm
	MaxDepth    *int
	Parallelism int

	// Events, if non-nil, receives progress events: ScanStarted,
	// DirEntered, EntryScanned, ScanWarning and a final ScanComplete.
	// Sends never block; an event is dropped when the channel is full.
	Events chan<- event.Event
}

// Warning records a non-fatal problem encountered while scanning one
// entry. The scan continues; the snapshot remains valid. It is an alias
// of snapshot.Warning, not a distinct type, so scanner.Result.Warnings
// can be carried straight into snapshot.Build without a conversion step.
type Warning = snapshot.Warning

// Result is the outcome of a completed scan.
type Result struct {
	Entries  []snapshot.Entry
	Warnings []Warning
	Stats    stats.Snapshot
}

// dirWork is one queued unit of traversal: a directory's root-relative
// path (the root itself is "") and its depth from the root.
type dirWork struct {
	relPath string
	depth   int
}

// Scan walks cfg.Root in parallel and returns every reachable entry
// (excluding the root itself, which the snapshot builder synthesizes).
// It blocks until the traversal completes or ctx is cancelled.
func Scan(ctx context.Context, cfg Config) (Result, error) {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = runtime.NumCPU()
	}

	info, err := os.Lstat(cfg.Root)
	if err != nil {
		return Result{}, galerr.IO(cfg.Root, err)
	}
	if !info.IsDir() {
		return Result{}, galerr.New(galerr.KindIO, fmt.Sprintf("root %s is not a directory", cfg.Root))
	}

	s := &scanState{
		cfg:   cfg,
		stats: stats.NewCollector(),
	}
	s.emitEvent(event.Event{Type: event.ScanStarted, Timestamp: time.Now()})

	workQueue := make(chan dirWork, cfg.Parallelism*2)
	var outstanding sync.WaitGroup
	var workers sync.WaitGroup

	cancelled := make(chan struct{})
	var cancelOnce sync.Once
	signalCancel := func() { cancelOnce.Do(func() { close(cancelled) }) }

	for range cfg.Parallelism {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for work := range workQueue {
				select {
				case <-ctx.Done():
					signalCancel()
					outstanding.Done()
					continue
				default:
				}
				s.scanDir(work, workQueue, &outstanding)
				outstanding.Done()
			}
		}()
	}

	outstanding.Add(1)
	workQueue <- dirWork{relPath: "", depth: 0}

	outstanding.Wait()
	close(workQueue)
	workers.Wait()

	select {
	case <-cancelled:
		return Result{}, galerr.New(galerr.KindCancelled, "scan cancelled")
	default:
	}

	entries := s.entries()
	s.emitEvent(event.Event{Type: event.ScanComplete, Timestamp: time.Now(), Total: int64(len(entries))})

	return Result{Entries: entries, Warnings: s.warningList(), Stats: s.stats.Snapshot()}, nil
}

// scanState holds the append-only, mutex-guarded collectors shared by the
// worker pool. Entries are constructed locally by each worker and moved
// into the collector; no two workers touch the same Entry value.
type scanState struct {
	cfg   Config
	stats *stats.Collector

	mu       sync.Mutex
	result   []snapshot.Entry
	warnings []Warning
}

// emitEvent sends e on cfg.Events if the caller asked for progress
// events, without blocking the scan if nobody is listening.
func (s *scanState) emitEvent(e event.Event) {
	if s.cfg.Events == nil {
		return
	}
	select {
	case s.cfg.Events <- e:
	default:
	}
}

func (s *scanState) addEntry(e snapshot.Entry) {
	s.mu.Lock()
	s.result = append(s.result, e)
	s.mu.Unlock()

	switch e.Type {
	case snapshot.KindFile:
		s.stats.AddFilesScanned(1)
	case snapshot.KindDirectory:
		s.stats.AddDirsScanned(1)
	case snapshot.KindSymlink:
		s.stats.AddSymlinksFound(1)
	case snapshot.KindOther:
		s.stats.AddOtherFound(1)
	}
	s.emitEvent(event.Event{Type: event.EntryScanned, Timestamp: time.Now(), Path: e.Path, Size: int64(e.Size)}) //nolint:gosec // entry sizes are non-negative
}

func (s *scanState) addWarning(w Warning) {
	s.mu.Lock()
	s.warnings = append(s.warnings, w)
	s.mu.Unlock()

	s.stats.AddWarningsRaised(1)
	s.emitEvent(event.Event{Type: event.ScanWarning, Timestamp: time.Now(), Path: w.Path, Message: w.Message})
}

func (s *scanState) entries() []snapshot.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]snapshot.Entry, len(s.result))
	copy(out, s.result)
	return out
}

func (s *scanState) warningList() []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// scanDir enumerates one directory's immediate children, emitting an
// Entry per child and enqueueing sub-directories as new work. A directory
// that cannot be read is recorded with a warning; the scan continues.
func (s *scanState) scanDir(work dirWork, workQueue chan<- dirWork, outstanding *sync.WaitGroup) {
	absPath := joinRoot(s.cfg.Root, work.relPath)
	s.emitEvent(event.Event{Type: event.DirEntered, Timestamp: time.Now(), Path: work.relPath})

	children, err := os.ReadDir(absPath)
	if err != nil {
		s.addWarning(Warning{Path: work.relPath, Message: fmt.Sprintf("readdir: %v", err)})
		return
	}

	// Children of this directory sit at depth work.depth+1; once that is
	// the limit, sub-directories are recorded but not descended into.
	atMaxDepth := s.cfg.MaxDepth != nil && work.depth+1 >= *s.cfg.MaxDepth

	for _, child := range children {
		name := child.Name()
		if !utf8.ValidString(name) {
			s.addWarning(Warning{
				Path:    path.Join(work.relPath, name),
				Message: "skipped: non-UTF-8 path component",
			})
			continue
		}

		childRel := name
		if work.relPath != "" {
			childRel = work.relPath + "/" + name
		}

		s.processChild(absPath, childRel, child, work.depth, atMaxDepth, workQueue, outstanding)
	}
}

func (s *scanState) processChild(
	parentAbs, childRel string,
	child os.DirEntry,
	parentDepth int,
	atMaxDepth bool,
	workQueue chan<- dirWork,
	outstanding *sync.WaitGroup,
) {
	childAbs := joinRoot(s.cfg.Root, childRel)

	info, err := os.Lstat(childAbs)
	if err != nil {
		s.addWarning(Warning{Path: childRel, Message: fmt.Sprintf("lstat: %v", err)})
		// Per spec section 4.3, a directory that disappeared between
		// enumeration and stat is still recorded, not silently dropped,
		// so the parent-presence invariant holds for anything that was
		// enumerated underneath it before it vanished.
		if child.IsDir() {
			s.addEntry(snapshot.Entry{
				Path:  childRel,
				Type:  snapshot.KindDirectory,
				Size:  0,
				Mode:  "000",
				Mtime: formatMtime(time.Now()),
			})
		}
		return
	}

	mode := info.Mode()

	switch {
	case mode&os.ModeSymlink != 0:
		s.emitSymlink(childAbs, childRel, info)

	case mode.IsDir():
		s.emitDir(childAbs, childRel, info)
		if !atMaxDepth {
			outstanding.Add(1)
			workQueue <- dirWork{relPath: childRel, depth: parentDepth + 1}
		}

	case mode.IsRegular():
		s.emitFile(childAbs, childRel, info)

	default:
		s.emitOther(childRel, info)
	}

	_ = parentAbs
}

func (s *scanState) emitDir(absPath, relPath string, info os.FileInfo) {
	modeStr, err := projectMode(absPath)
	if err != nil {
		s.addWarning(Warning{Path: relPath, Message: fmt.Sprintf("stat: %v", err)})
		s.addEntry(snapshot.Entry{
			Path:  relPath,
			Type:  snapshot.KindDirectory,
			Size:  0,
			Mode:  "000",
			Mtime: formatMtime(info.ModTime()),
		})
		return
	}

	s.addEntry(snapshot.Entry{
		Path:  relPath,
		Type:  snapshot.KindDirectory,
		Size:  uint64(info.Size()), //nolint:gosec // directory size is opaque and platform-reported
		Mode:  modeStr,
		Mtime: formatMtime(info.ModTime()),
	})
}

func (s *scanState) emitFile(absPath, relPath string, info os.FileInfo) {
	modeStr, err := projectMode(absPath)
	if err != nil {
		modeStr = "000"
		s.addWarning(Warning{Path: relPath, Message: fmt.Sprintf("stat: %v", err)})
	}

	entry := snapshot.Entry{
		Path:  relPath,
		Type:  snapshot.KindFile,
		Size:  uint64(info.Size()), //nolint:gosec // file sizes are non-negative
		Mode:  modeStr,
		Mtime: formatMtime(info.ModTime()),
	}

	digest, err := checksum.HashFile(absPath, s.cfg.Algorithm)
	if err != nil {
		// Per spec section 4.1: an unreadable regular file keeps
		// type=file with checksum=null, never reclassified as "other".
		s.addWarning(Warning{Path: relPath, Message: fmt.Sprintf("hash: %v", err)})
		entry.Checksum = nil
	} else {
		entry.Checksum = snapshot.StrPtr(digest)
		s.stats.AddBytesHashed(info.Size())
	}

	s.addEntry(entry)
}

func (s *scanState) emitSymlink(absPath, relPath string, info os.FileInfo) {
	target, err := os.Readlink(absPath)
	if err != nil {
		s.addWarning(Warning{Path: relPath, Message: fmt.Sprintf("readlink: %v", err)})
		target = ""
	}
	target = toSlash(target)

	s.addEntry(snapshot.Entry{
		Path:   relPath,
		Type:   snapshot.KindSymlink,
		Size:   uint64(len(target)),
		Mode:   "777",
		Mtime:  formatMtime(info.ModTime()),
		Target: snapshot.StrPtr(target),
	})
}

func (s *scanState) emitOther(relPath string, info os.FileInfo) {
	s.addEntry(snapshot.Entry{
		Path:  relPath,
		Type:  snapshot.KindOther,
		Size:  uint64(max64(info.Size(), 0)),
		Mode:  "000",
		Mtime: formatMtime(info.ModTime()),
	})
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// joinRoot builds an OS filesystem path from the scan root and a
// "/"-separated root-relative path.
func joinRoot(root, relPath string) string {
	if relPath == "" {
		return root
	}
	return root + string(os.PathSeparator) + filepathFromSlash(relPath)
}
