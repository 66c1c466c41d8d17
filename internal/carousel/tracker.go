// Package carousel implements the central reassembler: the per
// (carousel id, file id) assembly state machine that admits
// announcements and blocks, detects completion via the fast path (all
// systematic blocks present) or the FEC path (LDPC/RS recovery), and
// drives emission.
//
// One mutex-guarded map of in-flight assemblies, a bounded orphan
// buffer for blocks that outrun their announcement, and an LRU list
// capping the number of assemblies held at once.
package carousel

import (
	"container/list"
	"sync"
	"time"

	"satreceiver/internal/config"
	"satreceiver/internal/fileservice"
	"satreceiver/internal/ldpc"
	"satreceiver/internal/logging"
	"satreceiver/internal/metrics"
)

// Key re-exports fileservice.Key for callers that only need carousel.
type Key = fileservice.Key

// Sink receives completed files. Emit is called with the tracker's
// lock released, so a sink that blocks (e.g. slow disk I/O) does not
// stall ingestion of subsequent frames beyond the current one.
type Sink interface {
	Emit(name string, data []byte) error
}

// Tracker is the carousel/file reassembler. It owns the map of
// in-flight assemblies exclusively and is meant to be driven from one
// goroutine (the frame-processing loop); its internal lock exists to
// let completion emission happen without blocking that loop, not to
// support concurrent callers.
type Tracker struct {
	mu   sync.Mutex
	rt   config.Runtime
	sink Sink

	assemblies map[Key]*assembly
	lru        *list.List               // most-recently-touched at Front
	lruElem    map[Key]*list.Element

	orphans *orphanBuffer
}

// New builds a Tracker bounded by rt's resource caps.
func New(rt config.Runtime, sink Sink) *Tracker {
	return &Tracker{
		rt:         rt,
		sink:       sink,
		assemblies: make(map[Key]*assembly),
		lru:        list.New(),
		lruElem:    make(map[Key]*list.Element),
		orphans:    newOrphanBuffer(rt.MaxOrphanBlocks),
	}
}

// OnAnnouncement creates or updates the assembly for (carousel, file),
// retroactively admitting any buffered orphan blocks, and resets to a
// new generation if the announcement is incompatible with
// already-stored blocks.
func (t *Tracker) OnAnnouncement(a fileservice.Announcement) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := a.Key()
	as, ok := t.assemblies[key]
	if !ok {
		as = t.createLocked(key, a)
	} else if !as.compatible(a) {
		logging.Info("carousel: incompatible re-announcement for carousel=%d file=%d, starting new generation", a.CarouselID, a.FileID)
		as = t.createLocked(key, a)
	} else {
		as.updateAnnouncement(a)
	}
	t.touchLocked(key)

	for _, b := range t.orphans.take(key) {
		t.admitLocked(as, *b)
	}
	t.checkCompletionLocked(key, as)
}

// OnBlock verifies the inner CRC, admits the block into its matching
// assembly (buffering it as an orphan when the announcement hasn't
// arrived yet), de-duplicates, resolves conflicts last-write-wins, and
// tests completion.
func (t *Tracker) OnBlock(b fileservice.Block) {
	if !b.VerifyCRC() {
		metrics.BlocksIntegrityFailed.Inc()
		logging.Debug("carousel: bad inner crc for carousel=%d file=%d index=%d", b.CarouselID, b.FileID, b.Index)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := b.Key()
	as, ok := t.assemblies[key]
	if !ok {
		t.orphans.add(key, b)
		metrics.FramesDropped.WithLabelValues("orphan_buffered").Inc()
		return
	}

	t.admitLocked(as, b)
	t.touchLocked(key)
	t.checkCompletionLocked(key, as)
}

// createLocked makes a new assembly, applying the tracker's cap by
// evicting the least-recently-touched assembly first if needed.
func (t *Tracker) createLocked(key Key, a fileservice.Announcement) *assembly {
	if t.rt.MaxAssemblies > 0 && len(t.assemblies) >= t.rt.MaxAssemblies {
		t.evictOldestLocked()
	}
	as := newAssembly(a)
	t.assemblies[key] = as
	metrics.AssembliesActive.Set(float64(len(t.assemblies)))
	return as
}

func (t *Tracker) evictOldestLocked() {
	back := t.lru.Back()
	if back == nil {
		return
	}
	key := back.Value.(Key)
	t.lru.Remove(back)
	delete(t.lruElem, key)
	delete(t.assemblies, key)
	metrics.AssembliesEvicted.Inc()
}

func (t *Tracker) touchLocked(key Key) {
	if elem, ok := t.lruElem[key]; ok {
		t.lru.MoveToFront(elem)
		return
	}
	t.lruElem[key] = t.lru.PushFront(key)
}

// admitLocked stores a verified, key-matched block into its assembly:
// drop exact duplicates, last-write-wins on conflicting payloads with
// a counter, otherwise store and count.
func (t *Tracker) admitLocked(as *assembly, b fileservice.Block) {
	if b.Index >= as.total {
		logging.Debug("carousel: block index %d out of range [0,%d)", b.Index, as.total)
		return
	}

	existing, has := as.blocks[b.Index]
	if has {
		if bytesEqual(existing, b.Payload) {
			return // exact duplicate, silently dropped
		}
		metrics.BlocksConflicting.Inc()
		// last-write-wins
	}
	as.blocks[b.Index] = b.Payload
	as.lastActivity = time.Now()
	metrics.BlocksTotal.Inc()
}

// checkCompletionLocked tests both completion triggers (all
// systematic blocks present, or the outer code can fill the gaps) and
// emits on success.
func (t *Tracker) checkCompletionLocked(key Key, as *assembly) {
	if as.completed {
		return
	}

	if as.hasAllSystematic() {
		t.completeLocked(key, as, as.systematicInOrder())
		return
	}

	if uint32(len(as.blocks)) < as.systematic {
		return
	}

	code, err := as.code()
	if err != nil {
		logging.Debug("carousel: cannot build FEC code for carousel=%d file=%d: %v", as.ann.CarouselID, as.ann.FileID, err)
		return
	}

	recovered, err := code.Reconstruct(as.blocks, as.ann.FileLength)
	if err == ldpc.ErrInsufficient {
		return
	}
	if err != nil {
		logging.Debug("carousel: FEC reconstruct error for carousel=%d file=%d: %v", as.ann.CarouselID, as.ann.FileID, err)
		return
	}

	for i, payload := range recovered {
		if _, ok := as.blocks[uint32(i)]; !ok {
			metrics.FECRecoveredBlocks.Inc()
		}
		as.blocks[uint32(i)] = payload
	}
	t.completeLocked(key, as, recovered)
}

// completeLocked concatenates systematic blocks, truncates to the
// announced file length, retires the assembly, and hands the result to
// the sink outside the lock.
func (t *Tracker) completeLocked(key Key, as *assembly, systematic [][]byte) {
	as.completed = true
	name := as.ann.Name
	data := concatTruncate(systematic, as.ann.FileLength)

	delete(t.assemblies, key)
	if elem, ok := t.lruElem[key]; ok {
		t.lru.Remove(elem)
		delete(t.lruElem, key)
	}
	metrics.AssembliesActive.Set(float64(len(t.assemblies)))
	metrics.FilesCompleted.Inc()

	t.mu.Unlock()
	defer t.mu.Lock()
	if err := t.sink.Emit(name, data); err != nil {
		logging.Error("carousel: emit failed for %q: %v", name, err)
	}
}

// SweepAgeOut discards assemblies untouched for longer than the
// configured age-out interval. It is meant to be called periodically
// by the driver.
func (t *Tracker) SweepAgeOut() {
	if t.rt.AgeOutSeconds <= 0 {
		return
	}
	cutoff := time.Now().Add(-time.Duration(t.rt.AgeOutSeconds) * time.Second)

	t.mu.Lock()
	defer t.mu.Unlock()
	for key, as := range t.assemblies {
		if as.lastActivity.Before(cutoff) {
			delete(t.assemblies, key)
			if elem, ok := t.lruElem[key]; ok {
				t.lru.Remove(elem)
				delete(t.lruElem, key)
			}
			metrics.AssembliesEvicted.Inc()
		}
	}
	metrics.AssembliesActive.Set(float64(len(t.assemblies)))
}

// Len reports the number of in-flight assemblies; the tracker never
// retains more than the configured maximum.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.assemblies)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func concatTruncate(systematic [][]byte, fileLength uint64) []byte {
	out := make([]byte, 0, fileLength)
	for _, b := range systematic {
		if uint64(len(out)+len(b)) > fileLength {
			out = append(out, b[:fileLength-uint64(len(out))]...)
			break
		}
		out = append(out, b...)
	}
	return out
}
