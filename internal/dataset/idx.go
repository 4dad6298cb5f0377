package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
)

// IDX magic numbers for the two record types MNIST ships.
const (
	imageMagic = 2051
	labelMagic = 2049
)

// readImages decodes an IDX3 image stream (ubyte pixels, row-major).
func readImages(r io.Reader) (pixels [][]byte, rows, cols int, err error) {
	var header [4]uint32
	for i := range header {
		if err := binary.Read(r, binary.BigEndian, &header[i]); err != nil {
			return nil, 0, 0, fmt.Errorf("read image header: %w", err)
		}
	}
	if header[0] != imageMagic {
		return nil, 0, 0, fmt.Errorf("bad image magic %d (want %d)", header[0], imageMagic)
	}
	count := int(header[1])
	rows = int(header[2])
	cols = int(header[3])
	if count <= 0 || rows <= 0 || cols <= 0 {
		return nil, 0, 0, fmt.Errorf("bad image dimensions %dx%dx%d", count, rows, cols)
	}

	size := rows * cols
	pixels = make([][]byte, count)
	for i := range pixels {
		buf := make([]byte, size)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, 0, 0, fmt.Errorf("read image %d: %w", i, err)
		}
		pixels[i] = buf
	}
	return pixels, rows, cols, nil
}

// readLabels decodes an IDX1 label stream.
func readLabels(r io.Reader) ([]byte, error) {
	var header [2]uint32
	for i := range header {
		if err := binary.Read(r, binary.BigEndian, &header[i]); err != nil {
			return nil, fmt.Errorf("read label header: %w", err)
		}
	}
	if header[0] != labelMagic {
		return nil, fmt.Errorf("bad label magic %d (want %d)", header[0], labelMagic)
	}
	count := int(header[1])
	if count <= 0 {
		return nil, fmt.Errorf("bad label count %d", count)
	}

	labels := make([]byte, count)
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	return labels, nil
}
