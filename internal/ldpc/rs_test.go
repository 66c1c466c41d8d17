package ldpc

import (
	"bytes"
	"testing"
)

func TestRSCodeReconstructsMissingShards(t *testing.T) {
	const (
		k         = 4
		n         = 6
		blockSize = 16
	)
	code, err := NewRSCode(k, n, blockSize)
	if err != nil {
		t.Fatalf("NewRSCode: %v", err)
	}

	shards := make([][]byte, n)
	for i := range shards {
		shards[i] = bytes.Repeat([]byte{byte(i + 1)}, blockSize)
	}
	if err := code.enc.Encode(shards); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	received := map[uint32][]byte{}
	for i, s := range shards {
		if i == 1 || i == n-1 {
			continue // drop one systematic and one parity shard
		}
		received[uint32(i)] = s
	}

	out, err := code.Reconstruct(received, uint64(k*blockSize))
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	for i := 0; i < k; i++ {
		if !bytes.Equal(out[i], shards[i]) {
			t.Fatalf("block %d = %v, want %v", i, out[i], shards[i])
		}
	}
}

func TestRSCodeInsufficientShards(t *testing.T) {
	code, err := NewRSCode(4, 6, 16)
	if err != nil {
		t.Fatalf("NewRSCode: %v", err)
	}
	received := map[uint32][]byte{0: make([]byte, 16)}
	if _, err := code.Reconstruct(received, 64); err != ErrInsufficient {
		t.Fatalf("err = %v, want ErrInsufficient", err)
	}
}
