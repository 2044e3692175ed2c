package albumetl

import (
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/nao1215/albumetl/domain/model"
	"github.com/ulikunitz/xz"
)

// errBZ2Write is returned for bzip2 output; compress/bzip2 only decodes.
var errBZ2Write = errors.New("bzip2 compression is not supported for writing")

// decodedReader yields the decompressed bytes of an album file.
// Close releases the decoder first and then the source, if the reader owns one.
type decodedReader struct {
	io.Reader
	decoder io.Closer
	source  io.Closer
}

func (d *decodedReader) Close() error {
	var errs []error
	if d.decoder != nil {
		errs = append(errs, d.decoder.Close())
	}
	if d.source != nil {
		errs = append(errs, d.source.Close())
	}
	return errors.Join(errs...)
}

// decodeFile wraps r with the decoder matching the compression suffix of file.
// r itself is not closed by the returned reader.
func decodeFile(r io.Reader, file *model.File) (*decodedReader, error) {
	if !file.IsCompressed() {
		return &decodedReader{Reader: r}, nil
	}

	switch file.Compression() {
	case CompressionGZ:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return &decodedReader{Reader: zr, decoder: zr}, nil
	case CompressionBZ2:
		return &decodedReader{Reader: bzip2.NewReader(r)}, nil
	case CompressionXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		return &decodedReader{Reader: xr}, nil
	case CompressionZSTD:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		rc := zr.IOReadCloser()
		return &decodedReader{Reader: rc, decoder: rc}, nil
	default:
		return nil, fmt.Errorf("unsupported compression: %v", file.Compression())
	}
}

// openFile opens the album file on disk and decodes it.
func openFile(file *model.File) (*decodedReader, error) {
	f, err := os.Open(file.Path()) //nolint:gosec // input path comes from configuration
	if err != nil {
		return nil, err
	}
	d, err := decodeFile(f, file)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	d.source = f
	return d, nil
}

// encodedWriter compresses snapshot bytes into a newly created file.
type encodedWriter struct {
	io.Writer
	encoder io.Closer
	file    *os.File
}

// Close flushes the encoder and closes the file.
func (w *encodedWriter) Close() error {
	var errs []error
	if w.encoder != nil {
		errs = append(errs, w.encoder.Close())
	}
	errs = append(errs, w.file.Close())
	return errors.Join(errs...)
}

// createFile creates path and returns a writer compressing with c.
// Nothing is left on disk when the encoder cannot be set up.
func createFile(path string, c CompressionType) (*encodedWriter, error) {
	if c == CompressionBZ2 {
		return nil, errBZ2Write
	}

	f, err := os.Create(path) //nolint:gosec // output path comes from configuration
	if err != nil {
		return nil, err
	}
	w := &encodedWriter{Writer: f, file: f}

	switch c {
	case CompressionNone:
	case CompressionGZ:
		zw := gzip.NewWriter(f)
		w.Writer, w.encoder = zw, zw
	case CompressionXZ:
		xw, xerr := xz.NewWriter(f)
		if xerr != nil {
			err = fmt.Errorf("xz: %w", xerr)
			break
		}
		w.Writer, w.encoder = xw, xw
	case CompressionZSTD:
		zw, zerr := zstd.NewWriter(f)
		if zerr != nil {
			err = fmt.Errorf("zstd: %w", zerr)
			break
		}
		w.Writer, w.encoder = zw, zw
	default:
		err = fmt.Errorf("unsupported compression: %v", c)
	}
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}
	return w, nil
}
