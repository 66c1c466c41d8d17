package ldpc

import (
	"bytes"
	"testing"
)

func xorBlocks(blockSize int, blocks ...[]byte) []byte {
	out := make([]byte, blockSize)
	for _, b := range blocks {
		for i := 0; i < blockSize && i < len(b); i++ {
			out[i] ^= b[i]
		}
	}
	return out
}

func TestReconstructRecoversMissingSystematicBlock(t *testing.T) {
	const (
		k         = 4
		n         = 6
		n1        = 2
		seed      = 12345
		blockSize = 8
	)
	code := NewLDPCCode(k, n, n1, seed, blockSize)

	systematic := make([][]byte, k)
	for i := range systematic {
		systematic[i] = bytes.Repeat([]byte{byte(i + 1)}, blockSize)
	}

	received := make(map[uint32][]byte)
	for i, b := range systematic {
		received[uint32(i)] = b
	}
	for row, cols := range code.matrix {
		toXor := make([][]byte, 0, len(cols))
		for _, c := range cols {
			toXor = append(toXor, systematic[c])
		}
		received[uint32(k+row)] = xorBlocks(blockSize, toXor...)
	}

	// Drop one systematic block; it must be recoverable from parity.
	delete(received, 1)

	out, err := code.Reconstruct(received, uint64(k*blockSize))
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	for i, want := range systematic {
		if !bytes.Equal(out[i], want) {
			t.Fatalf("block %d = %v, want %v", i, out[i], want)
		}
	}
}

func TestReconstructFailsWhenUnderdetermined(t *testing.T) {
	const (
		k         = 4
		n         = 6
		n1        = 2
		seed      = 12345
		blockSize = 8
	)
	code := NewLDPCCode(k, n, n1, seed, blockSize)

	received := map[uint32][]byte{
		0: bytes.Repeat([]byte{1}, blockSize),
	}

	if _, err := code.Reconstruct(received, uint64(k*blockSize)); err != ErrInsufficient {
		t.Fatalf("err = %v, want ErrInsufficient", err)
	}
}

func TestBuildMatrixDeterministicForSameSeed(t *testing.T) {
	a := buildMatrix(10, 14, 3, 777)
	b := buildMatrix(10, 14, 3, 777)

	if len(a) != len(b) {
		t.Fatalf("row count differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			t.Fatalf("row %d length differs", i)
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("row %d col %d differs: %d vs %d", i, j, a[i][j], b[i][j])
			}
		}
	}
}

func TestBuildMatrixEveryRowHasAtLeastTwoColumns(t *testing.T) {
	matrix := buildMatrix(20, 28, 3, 42)
	for row, cols := range matrix {
		if len(cols) < 2 {
			t.Fatalf("row %d has %d columns, want at least 2", row, len(cols))
		}
	}
}
