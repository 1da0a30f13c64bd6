// Package compress shrinks raw scanner payloads before they are persisted.
//
// ZSTD is the default: scan output is large, repetitive JSON and compresses
// well. Gzip remains available for payloads that must interoperate with
// tooling that cannot read zstd.
package compress

import (
	"bytes"
	"compress/gzip"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/licomply/toolkit/pkg/errors"
)

// Algorithm names a supported compression algorithm.
type Algorithm string

const (
	AlgorithmZSTD Algorithm = "zstd"
	AlgorithmGzip Algorithm = "gzip"
	AlgorithmNone Algorithm = "none"
)

// Codec compresses and decompresses payloads with one algorithm.
// A Codec is safe for concurrent use.
type Codec struct {
	algorithm Algorithm

	encoders sync.Pool
	decoders sync.Pool
}

// NewCodec creates a codec for the given algorithm.
func NewCodec(algorithm Algorithm) *Codec {
	c := &Codec{algorithm: algorithm}
	if algorithm == AlgorithmZSTD {
		c.encoders = sync.Pool{
			New: func() any {
				enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
				return enc
			},
		}
		c.decoders = sync.Pool{
			New: func() any {
				dec, _ := zstd.NewReader(nil)
				return dec
			},
		}
	}
	return c
}

// Algorithm returns the codec's algorithm name as stored alongside payloads.
func (c *Codec) Algorithm() Algorithm {
	return c.algorithm
}

// Compress compresses the payload.
func (c *Codec) Compress(data []byte) ([]byte, error) {
	const op = "compress.Compress"

	switch c.algorithm {
	case AlgorithmZSTD:
		enc := c.encoders.Get().(*zstd.Encoder)
		defer c.encoders.Put(enc)

		var buf bytes.Buffer
		enc.Reset(&buf)
		if _, err := enc.Write(data); err != nil {
			return nil, errors.E(op, errors.KindInternal, "zstd write", err)
		}
		if err := enc.Close(); err != nil {
			return nil, errors.E(op, errors.KindInternal, "zstd close", err)
		}
		return buf.Bytes(), nil

	case AlgorithmGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, errors.E(op, errors.KindInternal, "gzip write", err)
		}
		if err := w.Close(); err != nil {
			return nil, errors.E(op, errors.KindInternal, "gzip close", err)
		}
		return buf.Bytes(), nil

	case AlgorithmNone:
		return data, nil

	default:
		return nil, errors.E(op, errors.KindInvalidInput, "unsupported algorithm "+string(c.algorithm))
	}
}

// Decompress reverses Compress.
func (c *Codec) Decompress(data []byte) ([]byte, error) {
	const op = "compress.Decompress"

	switch c.algorithm {
	case AlgorithmZSTD:
		dec := c.decoders.Get().(*zstd.Decoder)
		defer c.decoders.Put(dec)

		if err := dec.Reset(bytes.NewReader(data)); err != nil {
			return nil, errors.E(op, errors.KindInvalidInput, "zstd reset", err)
		}
		out, err := io.ReadAll(dec)
		if err != nil {
			return nil, errors.E(op, errors.KindInvalidInput, "zstd read", err)
		}
		return out, nil

	case AlgorithmGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.E(op, errors.KindInvalidInput, "gzip reader", err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.E(op, errors.KindInvalidInput, "gzip read", err)
		}
		return out, nil

	case AlgorithmNone:
		return data, nil

	default:
		return nil, errors.E(op, errors.KindInvalidInput, "unsupported algorithm "+string(c.algorithm))
	}
}
