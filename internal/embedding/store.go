// Package embedding provides key-value stores of precomputed word embeddings
// consumed by the vector similarity measure.
package embedding

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/standardbeagle/tracelink/internal/config"
	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
)

// Backend names accepted in embedding.backend
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// ErrDimension is returned when a stored blob is not a whole number of float32 values
var ErrDimension = errors.New("embedding blob length is not a multiple of 4")

// Store is a term -> vector lookup. A term without a vector is reported with
// found=false and a nil error; err is reserved for I/O failures.
type Store interface {
	Vector(term string) (vec []float32, found bool, err error)
	Put(term string, vec []float32) error
	Close() error
}

// Open creates the store named by cfg.Backend. The "none" backend returns a nil store.
func Open(cfg config.Embedding, logger *slog.Logger) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendNone:
		return nil, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendBadger:
		s, err := OpenBadger(BadgerConfig{Path: cfg.Path, Logger: logger})
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendSQLite:
		s, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, tlerrors.NewConfigError("embedding.backend", cfg.Backend,
			fmt.Errorf("unknown backend (known: %s, %s, %s, %s)", BackendNone, BackendMemory, BackendBadger, BackendSQLite))
	}
}

// Normalize is the key form used by every store
func Normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Encode serializes a vector as little-endian float32 values
func Encode(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, x := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf
}

// Decode is the inverse of Encode
func Decode(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrDimension, len(buf))
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec, nil
}
