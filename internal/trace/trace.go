// Package trace records and replays camera traces over a tile pyramid.
//
// A trace is a sequence of frames, each naming the tiles a viewer needs to
// draw that frame. Traces are stored as JSON lines, optionally compressed.
package trace

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/discochess/treecache/internal/codec"
	"github.com/discochess/treecache/internal/tile"
)

// Frame is one rendered frame of a trace.
type Frame struct {
	Index   int       `json:"frame"`
	Visible []tile.ID `json:"visible"`
}

// Clone returns a deep copy of frames.
func Clone(frames []Frame) []Frame {
	if frames == nil {
		return nil
	}
	out := make([]Frame, len(frames))
	for i, f := range frames {
		out[i] = Frame{Index: f.Index, Visible: slices.Clone(f.Visible)}
	}
	return out
}

// Writer encodes frames as JSON lines through a codec.
type Writer struct {
	zw  io.WriteCloser
	buf *bufio.Writer
	enc *json.Encoder
	n   int
}

// NewWriter returns a Writer that compresses its output to w with c.
func NewWriter(w io.Writer, c codec.Codec) (*Writer, error) {
	zw, err := c.Writer(w)
	if err != nil {
		return nil, fmt.Errorf("open %s writer: %w", c.Extension(), err)
	}
	buf := bufio.NewWriter(zw)
	return &Writer{zw: zw, buf: buf, enc: json.NewEncoder(buf)}, nil
}

// Write appends one frame.
func (w *Writer) Write(f Frame) error {
	if err := w.enc.Encode(f); err != nil {
		return fmt.Errorf("encode frame %d: %w", f.Index, err)
	}
	w.n++
	return nil
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int {
	return w.n
}

// Close flushes buffered frames and the codec. The underlying writer is
// not closed.
func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.zw.Close()
		return fmt.Errorf("flush trace: %w", err)
	}
	return w.zw.Close()
}

// Reader decodes frames written by Writer.
type Reader struct {
	zr  io.ReadCloser
	dec *json.Decoder
}

// NewReader returns a Reader that decompresses r with c.
func NewReader(r io.Reader, c codec.Codec) (*Reader, error) {
	zr, err := c.Reader(r)
	if err != nil {
		return nil, fmt.Errorf("open %s reader: %w", c.Extension(), err)
	}
	return &Reader{zr: zr, dec: json.NewDecoder(bufio.NewReader(zr))}, nil
}

// Next returns the next frame, or io.EOF after the last one.
func (r *Reader) Next() (Frame, error) {
	var f Frame
	if err := r.dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}

// Close releases the decompressor. The underlying reader is not closed.
func (r *Reader) Close() error {
	return r.zr.Close()
}

// ReadAll decodes every frame in r.
func ReadAll(r io.Reader, c codec.Codec) ([]Frame, error) {
	tr, err := NewReader(r, c)
	if err != nil {
		return nil, err
	}
	defer tr.Close()

	var frames []Frame
	for {
		f, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", len(frames), err)
		}
		frames = append(frames, f)
	}
}

// WriteAll encodes frames to w with c.
func WriteAll(w io.Writer, c codec.Codec, frames []Frame) error {
	tw, err := NewWriter(w, c)
	if err != nil {
		return err
	}
	for _, f := range frames {
		if err := tw.Write(f); err != nil {
			tw.Close()
			return err
		}
	}
	return tw.Close()
}
