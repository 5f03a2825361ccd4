package codec

import "io"

type identityCodec struct{}

// Identity returns a codec that passes data through unchanged.
func Identity() Codec {
	return identityCodec{}
}

func (identityCodec) Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

func (identityCodec) Writer(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

func (identityCodec) Extension() string { return "" }

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
