// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package stages runs the preprocessor over many translation units
// and records the results in a store.
package stages

import (
	"encoding/hex"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mdhender/cobold/diagnostics"
	"github.com/spf13/afero"
	"golang.org/x/crypto/blake2b"
)

// Digest returns the hex encoded blake2b-256 hash of data.
// Units with the same digest are only preprocessed once.
func Digest(data []byte) string {
	hash := blake2b.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// isSource reports whether name has a C source or header extension.
func isSource(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".c", ".h":
		return true
	}
	return false
}

// Sources expands paths into the list of files to preprocess.
// Files are taken as given; directories are walked for .c and .h files.
// The result is sorted and has no duplicates.
func Sources(afs afero.Fs, paths ...string) ([]string, error) {
	var files []string
	for _, path := range paths {
		fi, err := afs.Stat(path)
		if err != nil {
			return nil, &diagnostics.ErrReadFile{Path: path, Err: err}
		}
		if !fi.IsDir() {
			files = append(files, path)
			continue
		}
		err = afero.Walk(afs, path, func(name string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && isSource(name) {
				files = append(files, name)
			}
			return nil
		})
		if err != nil {
			return nil, &diagnostics.ErrReadFile{Path: path, Err: err}
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}
