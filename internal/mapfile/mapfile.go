// Package mapfile owns the on-disk lifecycle of an MMV file: the
// all-or-nothing commit of the serialised buffer and the shared
// read-write mapping mutated afterwards.
//
// Commit never exposes a partial file. The buffer is written to a
// temporary file in the target directory, fsynced, then renamed into
// place; only after the rename does the mapping exist. A crash at any
// point leaves either no file or the previous complete one.
package mapfile

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/pcpkit/mmv/errs"
)

// File is a committed, memory-mapped MMV file.
type File struct {
	path string
	f    *os.File
	data []byte
}

// Commit writes content to dir/name atomically and maps it shared
// read-write. The directory is created if missing.
func Commit(dir, name string, content []byte) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", errs.ErrExportFailed, dir, err)
	}

	tmp, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("%w: creating temp file: %v", errs.ErrExportFailed, err)
	}
	tmpPath := tmp.Name()

	fail := func(step string, cause error) (*File, error) {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrExportFailed, step, cause)
	}

	if _, err := tmp.Write(content); err != nil {
		return fail("writing temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail("setting file mode", err)
	}
	if err := tmp.Close(); err != nil {
		return fail("closing temp file", err)
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("%w: renaming into place: %v", errs.ErrExportFailed, err)
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: reopening %s: %v", errs.ErrExportFailed, path, err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, len(content), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: mapping %s: %v", errs.ErrExportFailed, path, err)
	}

	return &File{path: path, f: f, data: data}, nil
}

// Bytes returns the live mapping. Writes land in the shared file
// without further syscalls.
func (m *File) Bytes() []byte {
	return m.data
}

// Path returns the final path of the mapped file.
func (m *File) Path() string {
	return m.path
}

// Sync flushes the mapping to the file synchronously. The write path
// never needs this; it exists for tests and orderly shutdown.
func (m *File) Sync() error {
	return unix.Msync(m.data, unix.MS_SYNC)
}

// Close unmaps and closes the file, leaving it on disk. The mapping
// must not be used afterwards.
func (m *File) Close() error {
	if m.data == nil {
		return nil
	}

	err := unix.Munmap(m.data)
	m.data = nil

	if cerr := m.f.Close(); err == nil {
		err = cerr
	}

	return err
}
