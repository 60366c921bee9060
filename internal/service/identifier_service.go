package service

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

const (
	submissionIDPrefix = "KZ"
	base36Alphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	idSequenceWidth    = 3
	idRandomWidth      = 5
)

var submissionIDPattern = regexp.MustCompile(`^KZ-[A-Z0-9]+-[A-Z0-9]+$`)

// Sequence hands out monotonically increasing counters for identifier generation.
type Sequence interface {
	Next() int64
}

// AtomicSequence is a process-local Sequence safe for concurrent use.
type AtomicSequence struct {
	counter atomic.Int64
}

// Next returns the next counter value, starting at 1.
func (s *AtomicSequence) Next() int64 {
	return s.counter.Add(1)
}

// IdentifierService generates and inspects Kaizen submission identifiers.
// Identifiers are unique within one process; multi-instance deployments must share a Sequence.
type IdentifierService struct {
	seq    Sequence
	now    func() time.Time
	random func(n int) int
}

// IdentifierOption customises the generator.
type IdentifierOption func(*IdentifierService)

// WithSequence overrides the counter source.
func WithSequence(seq Sequence) IdentifierOption {
	return func(s *IdentifierService) {
		if seq != nil {
			s.seq = seq
		}
	}
}

// WithIdentifierClock overrides the clock.
func WithIdentifierClock(now func() time.Time) IdentifierOption {
	return func(s *IdentifierService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRandomSource overrides the source of the random suffix.
func WithRandomSource(random func(n int) int) IdentifierOption {
	return func(s *IdentifierService) {
		if random != nil {
			s.random = random
		}
	}
}

// NewIdentifierService constructs a generator with an atomic counter and the wall clock.
func NewIdentifierService(opts ...IdentifierOption) *IdentifierService {
	svc := &IdentifierService{
		seq:    &AtomicSequence{},
		now:    time.Now,
		random: rand.Intn,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Generate returns a new identifier of the form KZ-<time36>-<seq36><rand36>.
func (s *IdentifierService) Generate() string {
	ts := strings.ToUpper(strconv.FormatInt(s.now().UnixMilli(), 36))
	seq := strings.ToUpper(strconv.FormatInt(s.seq.Next(), 36))
	if len(seq) < idSequenceWidth {
		seq = strings.Repeat("0", idSequenceWidth-len(seq)) + seq
	}

	var b strings.Builder
	b.Grow(len(submissionIDPrefix) + len(ts) + len(seq) + idRandomWidth + 2)
	b.WriteString(submissionIDPrefix)
	b.WriteByte('-')
	b.WriteString(ts)
	b.WriteByte('-')
	b.WriteString(seq)
	for i := 0; i < idRandomWidth; i++ {
		b.WriteByte(base36Alphabet[s.random(len(base36Alphabet))])
	}
	return b.String()
}

// ValidateID reports whether id has the KZ-<segment>-<segment> shape.
func ValidateID(id string) bool {
	return submissionIDPattern.MatchString(id)
}

// ExtractTimestamp decodes the creation time embedded in id.
// It reports false instead of failing on malformed input.
func ExtractTimestamp(id string) (time.Time, bool) {
	parts := strings.Split(id, "-")
	if len(parts) < 2 || parts[1] == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(strings.ToLower(parts[1]), 36, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
