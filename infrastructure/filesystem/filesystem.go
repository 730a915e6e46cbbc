// Package filesystem holds the file-level primitives split and merge are
// built from: precondition checks, byte-range copies, fragment discovery
// and best-effort cleanup.
package filesystem

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/helixml/splitmerge/domain/fragment"
)

const (
	filePerm   os.FileMode = 0o644
	dirPerm    os.FileMode = 0o755
	bufferSize             = 64 * 1024
)

// RequireRegularFile checks that path names an existing regular file that
// can be opened for reading.
func RequireRegularFile(field, path string) (os.FileInfo, error) {
	if path == "" {
		return nil, fragment.NewValidationError(field, "path is empty", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fragment.NewValidationError(field, "cannot stat "+path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fragment.NewValidationError(field, path+" is not a regular file", nil)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fragment.NewValidationError(field, path+" is not readable", err)
	}
	_ = f.Close()
	return info, nil
}

// RequireDir checks that path names an existing directory.
func RequireDir(field, path string) error {
	if path == "" {
		return fragment.NewValidationError(field, "path is empty", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fragment.NewValidationError(field, "cannot stat "+path, err)
	}
	if !info.IsDir() {
		return fragment.NewValidationError(field, path+" is not a directory", nil)
	}
	return nil
}

// EnsureDir creates path and any missing parents.
func EnsureDir(field, path string) error {
	if path == "" {
		return fragment.NewValidationError(field, "path is empty", nil)
	}
	if err := os.MkdirAll(path, dirPerm); err != nil {
		return fragment.NewValidationError(field, "cannot create "+path, err)
	}
	return nil
}

// Within reports whether path lies inside dir (or is dir itself).
func Within(dir, path string) (bool, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false, err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false, nil
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))), nil
}

// WriteRange copies length bytes starting at offset of src into a new file
// at dest, truncating any existing file. The file is closed before WriteRange
// returns so buffered write errors are reported. created reports whether
// dest was opened, so a failed call tells the caller if anything exists at
// dest that needs removing.
func WriteRange(src io.ReaderAt, offset, length int64, dest string) (created bool, err error) {
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return false, fragment.NewTransferError("create", dest, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fragment.NewTransferError("close", dest, cerr)
		}
	}()

	w := bufio.NewWriterSize(f, bufferSize)
	n, err := io.CopyN(w, io.NewSectionReader(src, offset, length), length)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("short read: %d of %d bytes at offset %d: %w", n, length, offset, io.ErrUnexpectedEOF)
		}
		return true, fragment.NewTransferError("write", dest, err)
	}
	if err := w.Flush(); err != nil {
		return true, fragment.NewTransferError("flush", dest, err)
	}
	return true, nil
}

// AppendFile copies the whole content of path to w and returns the byte count.
func AppendFile(w io.Writer, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fragment.NewTransferError("open", path, err)
	}
	defer func() { _ = f.Close() }()

	n, err := io.Copy(w, f)
	if err != nil {
		return n, fragment.NewTransferError("append", path, err)
	}
	return n, nil
}

// RegularFiles walks dir recursively and returns the absolute paths of all
// regular files, sorted lexicographically. Files whose base name is listed in
// exclude are skipped.
func RegularFiles(dir string, exclude ...string) ([]string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fragment.NewTransferError("resolve", dir, err)
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		skip[name] = struct{}{}
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := skip[d.Name()]; ok {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fragment.NewTransferError("walk", dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}
