// Package dshard contains operators that erasure-code byte slices
// with Reed-Solomon coding, and recover them from partial shard sets.
package dshard

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/gordian-engine/drx"
	"github.com/klauspost/reedsolomon"
)

// Config is the shard layout shared by [Encode] and [Decode].
// Both ends of a pipeline must use the same values.
type Config struct {
	DataShards   int
	ParityShards int
}

func (c Config) validate() error {
	var err error

	if c.DataShards <= 0 {
		err = errors.Join(err, fmt.Errorf(
			"DataShards must be positive (got %d)", c.DataShards,
		))
	}
	if c.ParityShards < 0 {
		err = errors.Join(err, fmt.Errorf(
			"ParityShards must not be negative (got %d)", c.ParityShards,
		))
	}

	return err
}

func (c Config) encoder(generator string) (reedsolomon.Encoder, error) {
	if err := c.validate(); err != nil {
		return nil, &drx.GenerateError{
			Generator: generator,
			Reason:    "invalid shard layout",
			Err:       err,
		}
	}

	enc, err := reedsolomon.New(c.DataShards, c.ParityShards)
	if err != nil {
		return nil, &drx.GenerateError{
			Generator: generator,
			Reason:    "failed to build Reed-Solomon encoder",
			Err:       err,
		}
	}
	return enc, nil
}

// Shards is one erasure-coded item.
type Shards struct {
	// Data shards followed by parity shards.
	// A nil entry is a missing shard.
	Shards [][]byte

	// Length of the original item,
	// needed to strip the padding added to the last data shard.
	Size int
}

// Have returns the set of shard indices that are present.
func (s Shards) Have() *bitset.BitSet {
	bs := bitset.MustNew(uint(len(s.Shards)))
	for i, sh := range s.Shards {
		if sh != nil {
			bs.Set(uint(i))
		}
	}
	return bs
}

// Encode returns an operator splitting every item of src
// into cfg.DataShards data shards and computing cfg.ParityShards parity shards.
//
// The data shards may share memory with the source item,
// so src must not modify an item after producing it.
// An item that cannot be encoded, such as an empty one,
// fails the stream and releases src.
func Encode(src drx.Observable[[]byte], cfg Config) (drx.Observable[Shards], error) {
	enc, err := cfg.encoder("dshard.Encode")
	if err != nil {
		return nil, err
	}

	return drx.MapErr(src, func(b []byte) (Shards, error) {
		shards, err := enc.Split(b)
		if err != nil {
			return Shards{}, fmt.Errorf("failed to split data for sharding: %w", err)
		}
		if err := enc.Encode(shards); err != nil {
			return Shards{}, fmt.Errorf("failed to erasure-code data: %w", err)
		}
		return Shards{Shards: shards, Size: len(b)}, nil
	}), nil
}

// Decode returns an operator that restores the original item
// from every shard set of src.
// Missing shards are reconstructed in place.
//
// A shard set with fewer than cfg.DataShards shards present
// fails the stream and releases src.
func Decode(src drx.Observable[Shards], cfg Config) (drx.Observable[[]byte], error) {
	enc, err := cfg.encoder("dshard.Decode")
	if err != nil {
		return nil, err
	}

	return drx.MapErr(src, func(s Shards) ([]byte, error) {
		if have := s.Have().Count(); have < uint(cfg.DataShards) {
			return nil, fmt.Errorf(
				"cannot decode: need %d shards but only have %d: %w",
				cfg.DataShards, have, reedsolomon.ErrTooFewShards,
			)
		}

		if err := enc.ReconstructData(s.Shards); err != nil {
			return nil, fmt.Errorf("failed to reconstruct data shards: %w", err)
		}

		var buf bytes.Buffer
		buf.Grow(s.Size)
		if err := enc.Join(&buf, s.Shards, s.Size); err != nil {
			return nil, fmt.Errorf("failed to join data shards: %w", err)
		}
		return buf.Bytes(), nil
	}), nil
}
