package dataset

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func imagePayload(t *testing.T, magic uint32, count, rows, cols int, pixels []byte) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	for _, v := range []uint32{magic, uint32(count), uint32(rows), uint32(cols)} {
		if err := binary.Write(buf, binary.BigEndian, v); err != nil {
			t.Fatalf("write header: %v", err)
		}
	}
	buf.Write(pixels)
	return buf.Bytes()
}

func labelPayload(t *testing.T, magic uint32, labels []byte) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	for _, v := range []uint32{magic, uint32(len(labels))} {
		if err := binary.Write(buf, binary.BigEndian, v); err != nil {
			t.Fatalf("write header: %v", err)
		}
	}
	buf.Write(labels)
	return buf.Bytes()
}

func TestReadImages(t *testing.T) {
	payload := imagePayload(t, imageMagic, 2, 2, 2, []byte{0, 64, 128, 255, 1, 2, 3, 4})
	images, rows, cols, err := readImages(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("readImages: %v", err)
	}
	if rows != 2 || cols != 2 || len(images) != 2 {
		t.Fatalf("unexpected dimensions: %d images %dx%d", len(images), rows, cols)
	}
	if !bytes.Equal(images[0], []byte{0, 64, 128, 255}) {
		t.Fatalf("unexpected first image %v", images[0])
	}
}

func TestReadImagesBadMagic(t *testing.T) {
	payload := imagePayload(t, labelMagic, 1, 1, 1, []byte{7})
	if _, _, _, err := readImages(bytes.NewReader(payload)); err == nil {
		t.Fatalf("expected bad magic error")
	}
}

func TestReadImagesTruncated(t *testing.T) {
	payload := imagePayload(t, imageMagic, 2, 2, 2, []byte{0, 64, 128})
	if _, _, _, err := readImages(bytes.NewReader(payload)); err == nil {
		t.Fatalf("expected truncation error")
	}
}

func TestReadLabels(t *testing.T) {
	payload := labelPayload(t, labelMagic, []byte{3, 1, 4})
	labels, err := readLabels(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("readLabels: %v", err)
	}
	if !bytes.Equal(labels, []byte{3, 1, 4}) {
		t.Fatalf("unexpected labels %v", labels)
	}
}

func TestReadLabelsBadMagic(t *testing.T) {
	payload := labelPayload(t, imageMagic, []byte{1})
	if _, err := readLabels(bytes.NewReader(payload)); err == nil {
		t.Fatalf("expected bad magic error")
	}
}
