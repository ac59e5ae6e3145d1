package local

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zenmemory/pkg/domain/model"
)

// index.flat layout, little endian:
//
//	magic "ZFLT" | version u32 | dimension u32 | count u32 | count*dimension float32
const (
	indexMagic      = "ZFLT"
	indexVersion    = uint32(1)
	indexHeaderSize = 16
)

func encodeIndex(dim int, vectors [][]float32) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, indexHeaderSize+len(vectors)*dim*4))
	buf.WriteString(indexMagic)

	header := []uint32{indexVersion, uint32(dim), uint32(len(vectors))}
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, goerr.Wrap(err, "failed to encode index header")
	}
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, goerr.Wrap(model.ErrInvalidInput, "vector dimension mismatch in index",
				goerr.V("position", i),
				goerr.V(model.DimensionKey, len(vec)),
				goerr.V(model.ExpectedKey, dim),
			)
		}
		if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
			return nil, goerr.Wrap(err, "failed to encode index vector", goerr.V("position", i))
		}
	}
	return buf.Bytes(), nil
}

func decodeIndex(data []byte, dim int) ([][]float32, error) {
	if len(data) < indexHeaderSize {
		return nil, goerr.Wrap(model.ErrCorrupted, "index file is truncated", goerr.V("size", len(data)))
	}
	if string(data[:4]) != indexMagic {
		return nil, goerr.Wrap(model.ErrCorrupted, "index file has unknown format")
	}

	version := binary.LittleEndian.Uint32(data[4:8])
	if version != indexVersion {
		return nil, goerr.Wrap(model.ErrCorrupted, "unsupported index version", goerr.V("version", version))
	}
	storedDim := int(binary.LittleEndian.Uint32(data[8:12]))
	if storedDim != dim {
		return nil, goerr.Wrap(model.ErrCorrupted, "index dimension differs from configured dimension",
			goerr.V(model.DimensionKey, storedDim),
			goerr.V(model.ExpectedKey, dim),
		)
	}
	count := int(binary.LittleEndian.Uint32(data[12:16]))

	payload := data[indexHeaderSize:]
	if len(payload) != count*dim*4 {
		return nil, goerr.Wrap(model.ErrCorrupted, "index payload size does not match header",
			goerr.V("count", count),
			goerr.V("payload_size", len(payload)),
		)
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		vec := make([]float32, dim)
		for j := range vec {
			off := (i*dim + j) * 4
			v := math.Float32frombits(binary.LittleEndian.Uint32(payload[off : off+4]))
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return nil, goerr.Wrap(model.ErrCorrupted, "index has non-finite value", goerr.V("position", i))
			}
			vec[j] = v
		}
		vectors[i] = vec
	}
	return vectors, nil
}
