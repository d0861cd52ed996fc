package seed

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
)

// StableWindow is the default time bucket for roster seeds.
const StableWindow = time.Hour

const (
	fnvOffset32 uint32 = 0x811c9dc5
	fnvPrime32  uint32 = 0x01000193
)

// FNV1a32 hashes the UTF-16 code units of s.
func FNV1a32(s string) uint32 {
	h := fnvOffset32
	for _, unit := range utf16.Encode([]rune(s)) {
		h ^= uint32(unit)
		h *= fnvPrime32
	}
	return h
}

// Rand is a mulberry32 generator.
type Rand struct {
	state uint32
}

func NewRand(seed uint32) *Rand {
	return &Rand{state: seed}
}

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 {
	r.state += 0x6D2B79F5
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296
}

// Intn returns a value in [0, n).
func (r *Rand) Intn(n int) int {
	return int(r.Float64() * float64(n))
}

// Bucket is the index of the window containing now.
func Bucket(now time.Time, window time.Duration) int64 {
	if window <= 0 {
		window = StableWindow
	}
	return now.UnixMilli() / window.Milliseconds()
}

// StableKey joins the sorted attendees and the time bucket.
func StableKey(attendees []string, now time.Time, window time.Duration) string {
	sorted := append([]string(nil), attendees...)
	sort.Strings(sorted)
	return strings.Join(sorted, "|") + "|" + strconv.FormatInt(Bucket(now, window), 10)
}

// FromAttendees yields the same seed for the same roster within one window.
func FromAttendees(attendees []string, now time.Time, window time.Duration) uint32 {
	return FNV1a32(StableKey(attendees, now, window))
}

// Shuffle returns a Fisher-Yates permutation of items driven by seed.
// The input slice is not modified.
func Shuffle[T any](items []T, seed uint32) []T {
	out := append([]T(nil), items...)
	rng := NewRand(seed)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
