package html

import (
	"fmt"
	"time"
)

// Metrics describes a document before or after compression.
type Metrics struct {
	Filesize         int
	EmptyChars       int
	InlineScriptSize int
	InlineStyleSize  int
	InlineEventSize  int
}

func (m Metrics) String() string {
	return fmt.Sprintf("Filesize=%d, Empty Chars=%d, Script Size=%d, Style Size=%d, Event Handler Size=%d",
		m.Filesize, m.EmptyChars, m.InlineScriptSize, m.InlineStyleSize, m.InlineEventSize)
}

// Statistics describes a single Compress call: the document before and after
// compression, the total size of content that was preserved verbatim, and the
// wall-clock duration of the call.
type Statistics struct {
	Original      Metrics
	Compressed    Metrics
	PreservedSize int
	Duration      time.Duration

	start time.Time
}

func newStatistics(source string) *Statistics {
	return &Statistics{
		Original: Metrics{
			Filesize:   len(source),
			EmptyChars: countEmptyChars(source),
		},
		start: time.Now(),
	}
}

func (s *Statistics) finish(result string) {
	s.Compressed.Filesize = len(result)
	s.Compressed.EmptyChars = countEmptyChars(result)
	s.Duration = time.Since(s.start)
}

func (s *Statistics) String() string {
	return fmt.Sprintf("Time=%v, Preserved=%d, Original={%v}, Compressed={%v}",
		s.Duration, s.PreservedSize, s.Original, s.Compressed)
}

func countEmptyChars(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			n++
		}
	}
	return n
}
