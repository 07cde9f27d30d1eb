package compiler

// Bytecode cache: a compiled Bytecode can be serialized to a ".lyrc" sidecar
// file next to its source with SaveCache, and reloaded with LoadCache when
// the sidecar is no older than the source, skipping a recompile for runC --cache.

import (
	"os"

	"github.com/fxamacker/cbor/v2"
)

// CachePath returns the ".lyrc" sidecar path for a given source file.
func CachePath(sourceFile string) string {
	return sourceFile + ".lyrc"
}

// SaveCache encodes bc as CBOR and writes it to path.
func SaveCache(path string, bc Bytecode) error {
	data, err := cbor.Marshal(bc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCache decodes a previously saved Bytecode from path.
func LoadCache(path string) (Bytecode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bytecode{}, err
	}
	var bc Bytecode
	if err := cbor.Unmarshal(data, &bc); err != nil {
		return Bytecode{}, err
	}
	return bc, nil
}

// CacheFresh reports whether the cache at cachePath exists and is at least
// as new as sourceFile's last modification.
func CacheFresh(cachePath, sourceFile string) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	sourceInfo, err := os.Stat(sourceFile)
	if err != nil {
		return false
	}
	return !cacheInfo.ModTime().Before(sourceInfo.ModTime())
}
