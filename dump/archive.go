package dump

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic is the zstandard frame signature, used to tell archives
// apart from raw MMV files.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

func isArchive(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}

// WriteArchive writes a zstd-compressed snapshot of the MMV file at
// path. The file is validated first so an archive always holds a
// consistent, published image; live files mutate under the reader, an
// archive does not.
func WriteArchive(path string, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if _, err := Parse(data); err != nil {
		return fmt.Errorf("refusing to archive %s: %w", path, err)
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}

// ReadArchive parses an archive produced by WriteArchive.
func ReadArchive(r io.Reader) (*MMV, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

func parseArchive(data []byte) (*MMV, error) {
	return ReadArchive(bytes.NewReader(data))
}
