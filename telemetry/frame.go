package telemetry

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// NewRunID returns a fresh identifier tagging every record of one run.
func NewRunID() string {
	return uuid.NewString()
}

// FrameRecord is one sampled frame of a scene.
type FrameRecord struct {
	RunID    string  `csv:"run_id"`
	Frame    int64   `csv:"frame"`
	Time     float64 `csv:"time"`
	State    string  `csv:"state"`
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
	VX       float64 `csv:"vx"`
	VY       float64 `csv:"vy"`
	Tags     string  `csv:"tags"` // Gameplay tags on the morph, joined by '|'
	Entities int     `csv:"entities"`
	Digest   string  `csv:"digest"`
}

// JoinTags formats the tag list of a frame record.
func JoinTags(tags []string) string {
	return strings.Join(tags, "|")
}

// LevelResult is the outcome of one played level.
type LevelResult struct {
	RunID   string  `csv:"run_id"`
	Package string  `csv:"package"`
	Level   int     `csv:"level"`
	Success bool    `csv:"success"`
	Time    float64 `csv:"time"`
	Frames  int64   `csv:"frames"`
	Morphs  int     `csv:"morphs"` // Morph changes used
}

// Digest accumulates a fingerprint of the simulated state. Two runs with the
// same seed and inputs produce the same digest frame by frame.
type Digest struct {
	h   *xxhash.Digest
	buf [8]byte
}

// NewDigest starts an empty digest.
func NewDigest() *Digest {
	return &Digest{h: xxhash.New()}
}

// Float adds a float to the digest.
func (d *Digest) Float(v float64) {
	binary.LittleEndian.PutUint64(d.buf[:], math.Float64bits(v))
	d.h.Write(d.buf[:])
}

// Uint adds an integer to the digest.
func (d *Digest) Uint(v uint64) {
	binary.LittleEndian.PutUint64(d.buf[:], v)
	d.h.Write(d.buf[:])
}

// String adds a string to the digest.
func (d *Digest) String(s string) {
	d.h.WriteString(s)
}

// Sum returns the fingerprint.
func (d *Digest) Sum() uint64 {
	return d.h.Sum64()
}
