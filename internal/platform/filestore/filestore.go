// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

/*
Package filestore provides on-disk storage for uploaded thumbnail files.

Files are grouped per place:

	<baseDir>/<placeID>/<name><ext>

The [Store] interface keeps the thumbnail service testable without touching
the real filesystem; [Disk] is the production implementation.
*/
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store abstracts the physical storage of uploaded files.
type Store interface {
	// Write persists the file content and returns its internal path.
	Write(placeID, name string, content io.Reader) (string, error)

	// Delete removes a single stored file.
	Delete(placeID, name string) error

	// RemoveAll deletes every stored file for a place along with its directory.
	RemoveAll(placeID string) error

	// RemoveDirIfEmpty removes the place directory when no files remain in it.
	RemoveDirIfEmpty(placeID string) error
}

// Disk stores files under a base directory on the local filesystem.
type Disk struct {
	baseDir string
}

// NewDisk returns a disk store rooted at baseDir, creating it if needed.
func NewDisk(baseDir string) (*Disk, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: failed to create base directory: %w", err)
	}
	return &Disk{baseDir: baseDir}, nil
}

// Write persists the file content and returns its internal path.
func (d *Disk) Write(placeID, name string, content io.Reader) (string, error) {
	dir := filepath.Join(d.baseDir, placeID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("filestore: failed to create place directory: %w", err)
	}

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("filestore: failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		// Do not leave a truncated file behind.
		_ = os.Remove(path)
		return "", fmt.Errorf("filestore: failed to write file: %w", err)
	}

	return path, nil
}

// Delete removes a single stored file. Deleting a missing file is not an error.
func (d *Disk) Delete(placeID, name string) error {
	path := filepath.Join(d.baseDir, placeID, name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("filestore: failed to delete file: %w", err)
	}
	return nil
}

// RemoveAll deletes every stored file for a place along with its directory.
func (d *Disk) RemoveAll(placeID string) error {
	dir := filepath.Join(d.baseDir, placeID)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("filestore: failed to remove place directory: %w", err)
	}
	return nil
}

// RemoveDirIfEmpty removes the place directory when no files remain in it.
func (d *Disk) RemoveDirIfEmpty(placeID string) error {
	dir := filepath.Join(d.baseDir, placeID)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("filestore: failed to read place directory: %w", err)
	}

	if len(entries) > 0 {
		return nil
	}

	if err := os.Remove(dir); err != nil {
		return fmt.Errorf("filestore: failed to remove empty directory: %w", err)
	}

	return nil
}
