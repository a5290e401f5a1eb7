// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pathutil classifies glob-style paths and normalizes separators.
//
// Glob expansion marks directories with a trailing separator, so a path is
// treated as a directory purely by its shape. Nothing here touches the disk.
package pathutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// 🗂️ Kind is the file/directory classification of a path
type Kind int

const (
	File Kind = iota
	Directory
)

// String returns a string representation of Kind
func (k Kind) String() string {
	if k == Directory {
		return "directory"
	}
	return "file"
}

// 🔍 Classify reports whether path denotes a directory (trailing separator) or a file
func Classify(path string) Kind {
	if path == "" {
		return File
	}
	last := path[len(path)-1]
	if last == '/' || last == os.PathSeparator {
		return Directory
	}
	return File
}

// IsDir reports whether path ends with a separator
func IsDir(path string) bool {
	return Classify(path) == Directory
}

// IsFile reports whether path does not end with a separator
func IsFile(path string) bool {
	return Classify(path) == File
}

// 🔄 Normalize rewrites platform separators to forward slashes
func Normalize(path string) string {
	if runtime.GOOS == "windows" {
		return strings.ReplaceAll(path, `\`, "/")
	}
	return path
}

// 🏷️ WithKind adds or strips the trailing separator so that Classify(result) == kind
func WithKind(path string, kind Kind) string {
	switch {
	case kind == Directory && !IsDir(path):
		return path + "/"
	case kind == File:
		return strings.TrimRight(path, "/"+string(os.PathSeparator))
	default:
		return path
	}
}

// 🔑 Key returns the grouping identity of a path: normalized, cleaned, with no trailing separator
func Key(path string) string {
	if path == "" {
		return ""
	}
	return Normalize(filepath.Clean(path))
}

// KindOf maps a file mode to its Kind; ok is false for anything that is neither a regular file nor a directory
func KindOf(info os.FileInfo) (kind Kind, ok bool) {
	switch {
	case info.IsDir():
		return Directory, true
	case info.Mode().IsRegular():
		return File, true
	default:
		return File, false
	}
}
