// Package config holds the wire-format constants shared across the
// pipeline plus the runtime knobs that are not exposed as CLI flags.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Service identifiers routed by the service demultiplexer (internal/service).
const (
	ServiceTime uint8 = 0x01
	ServiceFile uint8 = 0x02
)

// File-service record discriminants (internal/fileservice).
const (
	RecordAnnouncement uint8 = 0x01
	RecordBlock        uint8 = 0x02
)

// FEC code families an announcement can select (internal/ldpc).
const (
	FECCodeLDPC uint8 = 0x01
	FECCodeRS   uint8 = 0x02
)

// Link-frame layout: [service_id:1][payload:variable][crc16:2].
const (
	LinkHeaderLen  = 1
	LinkTrailerLen = 2
	LinkMinFrame   = LinkHeaderLen + LinkTrailerLen
)

// Inner block layout: [carousel_id:4][file_id:4][index:4][crc16:2][payload:rest].
const BlockHeaderLen = 4 + 4 + 4 + 2

// Announcement fixed-field layout preceding the variable-length name
// and signature: carousel_id:4 file_id:4 total_blocks:4 block_size:4
// file_length:8 name_len:2.
const AnnouncementFixedLen = 4 + 4 + 4 + 4 + 8 + 2

// KISS replay framing (byte-stuffed, see internal/kiss).
const (
	KissFEND  byte = 0xC0
	KissFESC  byte = 0xDB
	KissTFEND byte = 0xDC
	KissTFESC byte = 0xDD
)

// DebugEnabled gates verbose pipeline logging. internal/logging reads
// it at log time.
var DebugEnabled bool

// Runtime holds the knobs that are not surfaced as CLI flags: resource
// bounds on the carousel tracker and its orphan buffer, plus the
// age-out policy. It is loadable from YAML (see LoadRuntime) with
// sane defaults applied when no file is present.
type Runtime struct {
	MaxAssemblies   int `yaml:"max_assemblies"`
	MaxOrphanBlocks int `yaml:"max_orphan_blocks"`
	AgeOutSeconds   int `yaml:"age_out_seconds"` // 0 = never age out
}

// DefaultRuntime returns conservative resource caps with age-out
// disabled by default.
func DefaultRuntime() Runtime {
	return Runtime{
		MaxAssemblies:   256,
		MaxOrphanBlocks: 1024,
		AgeOutSeconds:   0,
	}
}

// LoadRuntime reads a YAML runtime configuration file, falling back to
// DefaultRuntime for any zero-valued field (and entirely when path is
// empty or the file does not exist).
func LoadRuntime(path string) (Runtime, error) {
	rt := DefaultRuntime()
	if path == "" {
		return rt, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rt, nil
		}
		return rt, err
	}
	var overlay Runtime
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return rt, err
	}
	if overlay.MaxAssemblies > 0 {
		rt.MaxAssemblies = overlay.MaxAssemblies
	}
	if overlay.MaxOrphanBlocks > 0 {
		rt.MaxOrphanBlocks = overlay.MaxOrphanBlocks
	}
	if overlay.AgeOutSeconds > 0 {
		rt.AgeOutSeconds = overlay.AgeOutSeconds
	}
	return rt, nil
}
