package carousel

import (
	"fmt"
	"time"

	"satreceiver/internal/config"
	"satreceiver/internal/fileservice"
	"satreceiver/internal/ldpc"
)

// assembly is the in-flight reconstruction state for one (carousel id,
// file id) pair: the announced metadata, whatever block payloads have
// arrived so far keyed by global block index, and the lazily-built FEC
// code for the outer recovery path.
type assembly struct {
	ann          fileservice.Announcement
	systematic   uint32
	total        uint32
	blocks       map[uint32][]byte
	completed    bool
	createdAt    time.Time
	lastActivity time.Time

	fecCode  ldpc.Code
	fecErr   error
	fecBuilt bool
}

func newAssembly(a fileservice.Announcement) *assembly {
	now := time.Now()
	return &assembly{
		ann:          a,
		systematic:   a.Systematic,
		total:        a.Systematic + a.Parity,
		blocks:       make(map[uint32][]byte),
		createdAt:    now,
		lastActivity: now,
	}
}

// compatible reports whether a re-announcement describes the same
// carousel/file layout as one already in progress; an incompatible
// re-announcement (different block size, block counts, or file length)
// starts a fresh generation rather than mixing old and new blocks.
func (as *assembly) compatible(a fileservice.Announcement) bool {
	return as.ann.BlockSize == a.BlockSize &&
		as.ann.Systematic == a.Systematic &&
		as.ann.Parity == a.Parity &&
		as.ann.FileLength == a.FileLength &&
		as.ann.FECCode == a.FECCode
}

func (as *assembly) updateAnnouncement(a fileservice.Announcement) {
	as.ann = a
	as.lastActivity = time.Now()
}

// hasAllSystematic is the fast path: the file is complete as soon as
// every systematic block has arrived, with no need to invoke the
// outer code at all.
func (as *assembly) hasAllSystematic() bool {
	for i := uint32(0); i < as.systematic; i++ {
		if _, ok := as.blocks[i]; !ok {
			return false
		}
	}
	return true
}

// systematicInOrder returns the K systematic payloads in index order,
// valid only once hasAllSystematic is true.
func (as *assembly) systematicInOrder() [][]byte {
	out := make([][]byte, as.systematic)
	for i := uint32(0); i < as.systematic; i++ {
		out[i] = as.blocks[i]
	}
	return out
}

// code lazily builds the outer erasure code selected by the
// announcement's FECCode, caching both the result and any build error
// (e.g. an RS encoder that rejects the (k, n-k) shard configuration).
func (as *assembly) code() (ldpc.Code, error) {
	if as.fecBuilt {
		return as.fecCode, as.fecErr
	}
	as.fecBuilt = true

	k := int(as.ann.Systematic)
	n := int(as.ann.Systematic + as.ann.Parity)
	blockSize := int(as.ann.BlockSize)

	switch as.ann.FECCode {
	case config.FECCodeLDPC:
		as.fecCode = ldpc.NewLDPCCode(k, n, int(as.ann.N1), as.ann.Seed, blockSize)
	case config.FECCodeRS:
		as.fecCode, as.fecErr = ldpc.NewRSCode(k, n, blockSize)
	default:
		as.fecErr = fmt.Errorf("carousel: unknown fec code %d", as.ann.FECCode)
	}
	return as.fecCode, as.fecErr
}
