package dataset

import (
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// The four MNIST archives and their published SHA-256 digests.
const (
	trainImagesFile = "train-images-idx3-ubyte.gz"
	trainLabelsFile = "train-labels-idx1-ubyte.gz"
	testImagesFile  = "t10k-images-idx3-ubyte.gz"
	testLabelsFile  = "t10k-labels-idx1-ubyte.gz"
)

var digests = map[string]string{
	trainImagesFile: "440fcabf73cc546fa21475e81ea370265605f56be210a4024d2ca8f203523609",
	trainLabelsFile: "3552534a0a558bbed6aed32b30c495cca23d567ec52cac8be1a0730e8010255c",
	testImagesFile:  "8d422c7b0a1c1c79245a5bcf07fe86e33eeafee792b84584aec276f5a2dbc4e6",
	testLabelsFile:  "f7ae60f92e00ec6debd23a6088c31dbd2371eca3ffa0defaefb259924204aec6",
}

const mirrorURL = "https://storage.googleapis.com/cvdf-datasets/mnist/"

// ImageSize is the side length of an MNIST digit.
const ImageSize = 28

// NumClasses is the number of digit classes.
const NumClasses = 10

// Split holds one dataset split with flattened, normalized images.
type Split struct {
	Images [][]float32
	Labels []int
}

// Len returns the number of examples in the split.
func (s Split) Len() int { return len(s.Images) }

// Load returns the train and test splits, downloading any missing archive
// into dir first. Pixels are scaled to [0,1] and normalized with the
// 0.5 mean / 0.5 std used throughout, so values land in [-1,1].
func Load(dir string) (train, test Split, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Split{}, Split{}, fmt.Errorf("create data dir: %w", err)
	}
	train, err = loadSplit(dir, trainImagesFile, trainLabelsFile)
	if err != nil {
		return Split{}, Split{}, fmt.Errorf("load train split: %w", err)
	}
	test, err = loadSplit(dir, testImagesFile, testLabelsFile)
	if err != nil {
		return Split{}, Split{}, fmt.Errorf("load test split: %w", err)
	}
	return train, test, nil
}

func loadSplit(dir, imagesFile, labelsFile string) (Split, error) {
	rawImages, rows, cols, err := readImagesFile(dir, imagesFile)
	if err != nil {
		return Split{}, err
	}
	if rows != ImageSize || cols != ImageSize {
		return Split{}, fmt.Errorf("%s: unexpected image size %dx%d", imagesFile, rows, cols)
	}
	rawLabels, err := readLabelsFile(dir, labelsFile)
	if err != nil {
		return Split{}, err
	}
	if len(rawImages) != len(rawLabels) {
		return Split{}, fmt.Errorf("%s: %d images but %d labels", imagesFile, len(rawImages), len(rawLabels))
	}

	split := Split{
		Images: make([][]float32, len(rawImages)),
		Labels: make([]int, len(rawLabels)),
	}
	for i, img := range rawImages {
		split.Images[i] = normalize(img)
		label := int(rawLabels[i])
		if label < 0 || label >= NumClasses {
			return Split{}, fmt.Errorf("%s: example %d has label %d", labelsFile, i, label)
		}
		split.Labels[i] = label
	}
	return split, nil
}

func normalize(img []byte) []float32 {
	out := make([]float32, len(img))
	for i, px := range img {
		v := float32(px) / 255.0
		out[i] = (v - 0.5) / 0.5
	}
	return out
}

func readImagesFile(dir, name string) ([][]byte, int, int, error) {
	r, err := openArchive(dir, name)
	if err != nil {
		return nil, 0, 0, err
	}
	defer r.Close()
	return readImages(r)
}

func readLabelsFile(dir, name string) ([]byte, error) {
	r, err := openArchive(dir, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readLabels(r)
}

type gzipFile struct {
	f  *os.File
	gz *gzip.Reader
}

func (g *gzipFile) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipFile) Close() error {
	gzErr := g.gz.Close()
	if err := g.f.Close(); err != nil {
		return err
	}
	return gzErr
}

// openArchive opens the named gzip archive, fetching it from the public
// mirror if it is not already present in dir.
func openArchive(dir, name string) (io.ReadCloser, error) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if err := download(dir, name); err != nil {
			return nil, err
		}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gunzip %s: %w", path, err)
	}
	return &gzipFile{f: f, gz: gz}, nil
}

// download fetches one archive to a temp file, verifies its digest, and
// renames it into place so a partial fetch never shadows a good file.
func download(dir, name string) error {
	resp, err := http.Get(mirrorURL + name)
	if err != nil {
		return fmt.Errorf("download %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %s", name, resp.Status)
	}

	tmp, err := os.CreateTemp(dir, name+".partial-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("download %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	got := hex.EncodeToString(h.Sum(nil))
	if want := digests[name]; got != want {
		return fmt.Errorf("download %s: digest %s does not match %s", name, got, want)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("install %s: %w", name, err)
	}
	return nil
}
