package codec

import (
	"compress/gzip"
	"io"
)

type gzipCodec struct{}

// Gzip returns a gzip codec.
func Gzip() Codec {
	return gzipCodec{}
}

func (gzipCodec) Reader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func (gzipCodec) Writer(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}

func (gzipCodec) Extension() string { return "gz" }
