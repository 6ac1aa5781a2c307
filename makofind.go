// Package makofind provides a physical, depth-first directory walk with a
// bounded number of open directory handles.
//
// The walk never follows symbolic links. Every object reachable from the root
// is handed to a single VisitFunc exactly once, in pre-order, together with its
// lstat metadata and a Kind that classifies it. The visitor decides whether the
// walk continues, skips the subtree below a directory, or aborts.
//
// Basic usage:
//
//	visit := func(e *makofind.Entry) makofind.Action {
//		if e.Kind == makofind.KindFile {
//			fmt.Println(e.Path, e.Info.Size())
//		}
//		return makofind.Continue
//	}
//	if err := makofind.Walk("/var/tmp", makofind.DefaultMaxOpen, visit); err != nil {
//		// Handle error
//	}
//
// Paths are built by appending "/" and the entry name to the parent path, so
// they are relative when the root is relative. No sorting is imposed: entries
// come in directory enumeration order.
package makofind

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// DefaultMaxOpen is the default bound on simultaneously open directory handles.
// It is enough for realistic nesting depth without straining descriptor limits.
const DefaultMaxOpen = 10

// readBatch is the number of names read from an open directory per call.
const readBatch = 128

// ErrAborted is returned by Run when the visitor returned Abort.
var ErrAborted = errors.New("walk aborted by visitor")

// Kind classifies a visited filesystem object.
type Kind int

const (
	// KindFile is any non-directory, non-symlink object.
	KindFile Kind = iota
	// KindDir is a directory that was opened for reading.
	KindDir
	// KindDirNoRead is a directory that could not be opened; its subtree is skipped.
	KindDirNoRead
	// KindStatFailed is an object whose metadata could not be retrieved.
	KindStatFailed
	// KindSymlink is a symbolic link. It is never followed.
	KindSymlink
	// KindUnknown is an object whose type the platform could not identify.
	KindUnknown
)

// String returns a short lowercase name for the kind.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindDirNoRead:
		return "dir-unreadable"
	case KindStatFailed:
		return "stat-failed"
	case KindSymlink:
		return "symlink"
	case KindUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Action tells the walker how to proceed after a visit.
type Action int

const (
	// Continue proceeds with the walk.
	Continue Action = iota
	// SkipSubtree does not descend into the directory just visited.
	// For any other kind it behaves like Continue.
	SkipSubtree
	// Abort stops the walk; Run returns ErrAborted.
	Abort
)

// Entry describes one visited object. It is only valid for the duration of
// the VisitFunc call that receives it.
type Entry struct {
	// Path is the full path of the object, rooted at the walk root.
	Path string
	// Base is the offset of the last path component within Path.
	Base int
	// Depth is 0 for the root and grows by one per directory level.
	Depth int
	// Kind classifies the object.
	Kind Kind
	// Info holds lstat metadata. It is nil for KindStatFailed.
	Info os.FileInfo
	// Err is the cause for KindDirNoRead and KindStatFailed.
	Err error
}

// Name returns the last path component of the entry.
func (e *Entry) Name() string {
	return e.Path[e.Base:]
}

// VisitFunc is invoked once per visited object.
type VisitFunc func(e *Entry) Action

// Walker walks one root. A Walker is not safe for concurrent use and Run
// should only be called once per Walker instance.
type Walker struct {
	root    string
	maxOpen int
	visit   VisitFunc
	logger  *slog.Logger

	stack  []*dirFrame
	open   int
	drains int
}

// dirFrame is one directory on the depth-first stack.
//
// While the handle is open, names are read from it in batches. When the
// handle bound forces the frame to give up its descriptor, the remaining
// names are drained into pending and read from memory afterwards.
type dirFrame struct {
	path    string
	depth   int
	dir     *os.File
	pending []string
}

// NewWalker creates a new Walker for the given root path.
//
// The maxOpen parameter bounds the number of directory handles held open at
// once. If maxOpen is less than or equal to 0, it defaults to 1. The root path
// is used as given so that reported paths keep the caller's spelling.
func NewWalker(root string, maxOpen int, visit VisitFunc) *Walker {
	if maxOpen <= 0 {
		maxOpen = 1
	}
	return &Walker{
		root:    root,
		maxOpen: maxOpen,
		visit:   visit,
		logger:  slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the logger used for debug output and returns the Walker.
func (w *Walker) WithLogger(logger *slog.Logger) *Walker {
	if logger != nil {
		w.logger = logger
	}
	return w
}

// Drains reports how many times an open directory was drained into memory
// and closed to stay within the handle bound.
func (w *Walker) Drains() int {
	return w.drains
}

// Walk is a convenience wrapper around NewWalker(...).Run().
func Walk(root string, maxOpen int, visit VisitFunc) error {
	return NewWalker(root, maxOpen, visit).Run()
}

// Run performs the walk and blocks until it is complete.
//
// It returns an error if the root itself cannot be lstat'ed, if reading an
// already opened directory fails, or ErrAborted if the visitor aborted.
// Unreadable directories and failed lstats below the root are reported to
// the visitor and do not stop the walk.
func (w *Walker) Run() error {
	defer w.closeAll()

	info, err := os.Lstat(w.root)
	if err != nil {
		return fmt.Errorf("lstat failed for '%s': %w", w.root, err)
	}

	if err := w.enter(w.root, baseOffset(w.root), 0, info); err != nil {
		return err
	}

	for len(w.stack) > 0 {
		top := w.stack[len(w.stack)-1]

		name, ok, err := top.next()
		if err != nil {
			return fmt.Errorf("readdir failed for '%s': %w", top.path, err)
		}
		if !ok {
			w.pop()
			continue
		}

		childPath, base := joinPath(top.path, name)
		childInfo, err := os.Lstat(childPath)
		if err != nil {
			entry := &Entry{Path: childPath, Base: base, Depth: top.depth + 1, Kind: KindStatFailed, Err: err}
			if w.visit(entry) == Abort {
				return ErrAborted
			}
			continue
		}

		if err := w.enter(childPath, base, top.depth+1, childInfo); err != nil {
			return err
		}
	}

	return nil
}

// enter visits one object and, for a readable directory, pushes it on the stack.
func (w *Walker) enter(path string, base, depth int, info os.FileInfo) error {
	entry := &Entry{Path: path, Base: base, Depth: depth, Kind: kindOf(info.Mode()), Info: info}

	if entry.Kind != KindDir {
		if w.visit(entry) == Abort {
			return ErrAborted
		}
		return nil
	}

	if err := w.reserve(); err != nil {
		return err
	}

	dir, err := openDir(path)
	if err != nil {
		entry.Kind = KindDirNoRead
		entry.Err = err
		if w.visit(entry) == Abort {
			return ErrAborted
		}
		return nil
	}
	w.open++

	switch w.visit(entry) {
	case Abort:
		w.closeDir(dir)
		return ErrAborted
	case SkipSubtree:
		w.closeDir(dir)
		return nil
	}

	w.stack = append(w.stack, &dirFrame{path: path, depth: depth, dir: dir})
	return nil
}

// reserve makes room for one more open handle by draining the shallowest
// frame that still holds one.
func (w *Walker) reserve() error {
	if w.open < w.maxOpen {
		return nil
	}
	for _, frame := range w.stack {
		if frame.dir == nil {
			continue
		}
		names, err := frame.dir.Readdirnames(-1)
		w.closeDir(frame.dir)
		frame.dir = nil
		if err != nil {
			return fmt.Errorf("readdir failed for '%s': %w", frame.path, err)
		}
		frame.pending = append(frame.pending, names...)
		w.drains++
		w.logger.Debug("drained directory to stay within handle bound",
			"path", frame.path, "names", len(frame.pending), "max_open", w.maxOpen)
		return nil
	}
	return nil
}

func (w *Walker) pop() {
	top := w.stack[len(w.stack)-1]
	if top.dir != nil {
		w.closeDir(top.dir)
		top.dir = nil
	}
	w.stack = w.stack[:len(w.stack)-1]
}

func (w *Walker) closeDir(dir *os.File) {
	if err := dir.Close(); err != nil {
		w.logger.Debug("close failed", "path", dir.Name(), "error", err)
	}
	w.open--
}

func (w *Walker) closeAll() {
	for len(w.stack) > 0 {
		w.pop()
	}
}

// next returns the next name in the directory, or false at the end.
func (f *dirFrame) next() (string, bool, error) {
	if len(f.pending) == 0 && f.dir != nil {
		names, err := f.dir.Readdirnames(readBatch)
		if err != nil && !errors.Is(err, io.EOF) {
			return "", false, err
		}
		f.pending = names
	}
	if len(f.pending) == 0 {
		return "", false, nil
	}
	name := f.pending[0]
	f.pending = f.pending[1:]
	return name, true, nil
}

// kindOf maps an lstat mode to a Kind.
func kindOf(mode fs.FileMode) Kind {
	switch {
	case mode.IsDir():
		return KindDir
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	case mode&fs.ModeIrregular != 0:
		return KindUnknown
	default:
		return KindFile
	}
}

// joinPath appends name to parent and returns the offset of name in the result.
func joinPath(parent, name string) (string, int) {
	if strings.HasSuffix(parent, "/") {
		return parent + name, len(parent)
	}
	return parent + "/" + name, len(parent) + 1
}

// baseOffset returns the offset of the last component of a root path.
func baseOffset(path string) int {
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		return 0
	}
	return strings.LastIndex(trimmed, "/") + 1
}
