// Package binsniff implements the heuristic used to decide whether a file
// encountered during a directory walk is worth feeding to the scanner: an
// extension blacklist, a size window, and magic-byte checks for the
// executable formats protobuf descriptors are typically embedded in.
package binsniff

import (
	"os"
	"path/filepath"
	"strings"
)

var skipExtensions = map[string]bool{
	"txt": true, "md": true, "json": true, "yaml": true, "yml": true,
	"xml": true, "html": true, "css": true, "js": true, "ts": true,
	"py": true, "rb": true, "go": true, "rs": true, "c": true, "h": true,
	"cpp": true, "hpp": true, "java": true, "proto": true, "toml": true,
	"ini": true, "cfg": true, "conf": true, "log": true, "csv": true,
	"svg": true, "png": true, "jpg": true, "jpeg": true, "gif": true,
	"pdf": true, "zip": true, "tar": true, "gz": true, "bz2": true,
	"xz": true, "7z": true, "rar": true, "sh": true, "bash": true,
	"zsh": true, "fish": true, "ps1": true, "bat": true, "cmd": true,
}

const (
	minSize = 1024
	maxSize = 500 * 1024 * 1024
)

// LikelyBinary reports whether path is worth scanning for embedded
// descriptors: not an obviously textual/source extension, within the
// expected executable size window, and either recognized by magic bytes
// or extensionless.
func LikelyBinary(path string) bool {
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."); ext != "" {
		if skipExtensions[ext] {
			return false
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	size := info.Size()
	if size < minSize || size > maxSize {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	var magic [4]byte
	if _, err := f.Read(magic[:]); err != nil {
		return filepath.Ext(path) == ""
	}

	if isMachO(magic) || isELF(magic) || isPE(magic) {
		return true
	}

	return filepath.Ext(path) == ""
}

func isMachO(magic [4]byte) bool {
	switch magic {
	case [4]byte{0xCF, 0xFA, 0xED, 0xFE}, // 64-bit
		[4]byte{0xCE, 0xFA, 0xED, 0xFE}, // 32-bit
		[4]byte{0xFE, 0xED, 0xFA, 0xCF}, // 64-bit reverse
		[4]byte{0xFE, 0xED, 0xFA, 0xCE}, // 32-bit reverse
		[4]byte{0xCA, 0xFE, 0xBA, 0xBE}: // universal (fat)
		return true
	default:
		return false
	}
}

func isELF(magic [4]byte) bool {
	return magic == [4]byte{0x7F, 'E', 'L', 'F'}
}

func isPE(magic [4]byte) bool {
	return magic[0] == 'M' && magic[1] == 'Z'
}
