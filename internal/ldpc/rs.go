package ldpc

import (
	rs "github.com/klauspost/reedsolomon"
)

// RSCode is the Reed-Solomon-backed alternative outer erasure code,
// selected when an announcement's FECCode names the RS family instead
// of LDPC: a klauspost/reedsolomon systematic encoder used purely for
// its Reconstruct() erasure-recovery path.
type RSCode struct {
	k, n, blockSize int
	enc             rs.Encoder
}

// NewRSCode builds a (k, n-k) Reed-Solomon encoder for fixed-size
// shards.
func NewRSCode(k, n, blockSize int) (*RSCode, error) {
	enc, err := rs.New(k, n-k)
	if err != nil {
		return nil, err
	}
	return &RSCode{k: k, n: n, blockSize: blockSize, enc: enc}, nil
}

// Reconstruct fills every shard slot present in received into a dense
// [N]shard array (nil for missing) and asks the RS encoder to recover
// the missing systematic shards.
func (c *RSCode) Reconstruct(received map[uint32][]byte, fileLength uint64) ([][]byte, error) {
	shards := make([][]byte, c.n)
	present := 0
	for i := 0; i < c.n; i++ {
		if b, ok := received[uint32(i)]; ok {
			shard := make([]byte, c.blockSize)
			copy(shard, b)
			shards[i] = shard
			present++
		}
	}
	if present < c.k {
		return nil, ErrInsufficient
	}

	if err := c.enc.Reconstruct(shards); err != nil {
		return nil, ErrInsufficient
	}

	out := make([][]byte, c.k)
	for i := 0; i < c.k; i++ {
		out[i] = shards[i][:unpaddedLen(i, fileLength, c.blockSize)]
	}
	return out, nil
}
