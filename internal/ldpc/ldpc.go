// Package ldpc implements the outer erasure decoder: an LDPC
// staircase-style code parameterized by (K, N, N1, Seed), decoded by
// iterative row-peeling, plus an alternate Reed-Solomon-backed code
// (backed by github.com/klauspost/reedsolomon) for announcements that
// select the RS family instead.
package ldpc

import "errors"

// ErrInsufficient is returned when the received block set does not
// determine all systematic unknowns; this is not a fatal condition,
// the caller simply leaves the assembly open and waits for more
// blocks.
var ErrInsufficient = errors.New("ldpc: insufficient blocks to reconstruct")

// Code reconstructs the K systematic block payloads of a file from
// whatever subset of its N coded blocks was received.
type Code interface {
	// Reconstruct takes the full map of received blocks keyed by
	// their global index (systematic indices [0,K), parity indices
	// [K,N)) plus the true byte length of the file (for
	// truncating the final systematic block), and returns all K
	// systematic payloads in order, or ErrInsufficient.
	Reconstruct(received map[uint32][]byte, fileLength uint64) ([][]byte, error)
}

// LDPCCode is the staircase erasure code selected by an announcement's
// FECCode == config.FECCodeLDPC.
type LDPCCode struct {
	k, n, blockSize int
	matrix          [][]int // matrix[row] = systematic column indices that parity row XORs
}

// NewLDPCCode materialises the parity-check matrix for (k, n, n1, seed)
// once; it is reused across every Reconstruct call for the file.
func NewLDPCCode(k, n, n1 int, seed uint32, blockSize int) *LDPCCode {
	return &LDPCCode{
		k:         k,
		n:         n,
		blockSize: blockSize,
		matrix:    buildMatrix(k, n, n1, seed),
	}
}

// Reconstruct runs the iterative peeling decode: repeatedly find a
// parity equation with exactly one unknown systematic column, solve it
// by XOR-substitution, and repeat until every systematic column is
// known (success) or no equation has exactly one unknown (stall ->
// ErrInsufficient).
func (c *LDPCCode) Reconstruct(received map[uint32][]byte, fileLength uint64) ([][]byte, error) {
	blocks := make([][]byte, c.k)
	missing := 0
	for i := 0; i < c.k; i++ {
		if b, ok := received[uint32(i)]; ok {
			blocks[i] = b
		} else {
			missing++
		}
	}
	if missing == 0 {
		return blocks, nil
	}

	var pending []int
	for row := 0; row < len(c.matrix); row++ {
		if _, ok := received[uint32(c.k+row)]; ok {
			pending = append(pending, row)
		}
	}

	for missing > 0 {
		repaired := 0
		var remaining []int
		for _, row := range pending {
			cols := c.matrix[row]
			var unknownCol = -1
			unknownCount := 0
			for _, col := range cols {
				if blocks[col] == nil {
					unknownCount++
					unknownCol = col
					if unknownCount > 1 {
						break
					}
				}
			}
			if unknownCount > 1 {
				remaining = append(remaining, row)
				continue
			}
			// This row is consumed: either it solves a column now
			// or all its columns are already known and it carries
			// no further information.
			if unknownCount == 0 {
				continue
			}

			accum := append([]byte(nil), received[uint32(c.k+row)]...)
			for _, col := range cols {
				if col == unknownCol {
					continue
				}
				symbol := padSystematic(blocks[col], col, fileLength, c.blockSize)
				for i := range accum {
					accum[i] ^= symbol[i]
				}
			}

			unpaddedSize := unpaddedLen(unknownCol, fileLength, c.blockSize)
			blocks[unknownCol] = accum[:unpaddedSize]
			missing--
			repaired++
		}
		pending = remaining
		if repaired == 0 {
			return nil, ErrInsufficient
		}
	}

	return blocks, nil
}

// unpaddedLen is the true byte length of systematic block index within
// the file (shorter than blockSize only for the final block).
func unpaddedLen(index int, fileLength uint64, blockSize int) int {
	remaining := int64(fileLength) - int64(index)*int64(blockSize)
	if remaining < 0 {
		return 0
	}
	if remaining > int64(blockSize) {
		return blockSize
	}
	return int(remaining)
}

// padSystematic returns block padded to blockSize with 0xFF, so the
// final (possibly short) block's length doesn't misalign parity
// arithmetic.
func padSystematic(block []byte, index int, fileLength uint64, blockSize int) []byte {
	if len(block) == blockSize {
		return block
	}
	out := make([]byte, blockSize)
	copy(out, block)
	for i := len(block); i < blockSize; i++ {
		out[i] = 0xFF
	}
	return out
}
