package carousel

import (
	"satreceiver/internal/fileservice"
	"satreceiver/internal/metrics"
)

// orphanBuffer holds blocks whose announcement hasn't arrived yet, in
// arrival order, bounded to cap entries total across all keys. When
// full, the oldest orphan is dropped to admit a new one.
type orphanBuffer struct {
	cap  int
	keys []fileservice.Key
	byKey map[fileservice.Key][]*fileservice.Block
}

func newOrphanBuffer(cap int) *orphanBuffer {
	return &orphanBuffer{
		cap:   cap,
		byKey: make(map[fileservice.Key][]*fileservice.Block),
	}
}

func (o *orphanBuffer) count() int {
	n := 0
	for _, v := range o.byKey {
		n += len(v)
	}
	return n
}

// add stores b under key, evicting the oldest orphan overall if the
// buffer is at capacity.
func (o *orphanBuffer) add(key fileservice.Key, b fileservice.Block) {
	if o.cap > 0 && o.count() >= o.cap {
		o.evictOldest()
	}
	cp := b
	o.byKey[key] = append(o.byKey[key], &cp)
	o.keys = append(o.keys, key)
}

func (o *orphanBuffer) evictOldest() {
	for len(o.keys) > 0 {
		k := o.keys[0]
		o.keys = o.keys[1:]
		if blocks, ok := o.byKey[k]; ok && len(blocks) > 0 {
			o.byKey[k] = blocks[1:]
			if len(o.byKey[k]) == 0 {
				delete(o.byKey, k)
			}
			metrics.OrphanBlocksDropped.Inc()
			return
		}
	}
}

// take removes and returns every orphan block stored under key, in
// arrival order.
func (o *orphanBuffer) take(key fileservice.Key) []*fileservice.Block {
	blocks, ok := o.byKey[key]
	if !ok {
		return nil
	}
	delete(o.byKey, key)

	kept := o.keys[:0:0]
	for _, k := range o.keys {
		if k != key {
			kept = append(kept, k)
		}
	}
	o.keys = kept
	return blocks
}
