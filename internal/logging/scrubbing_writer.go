package logging

import (
	"bytes"
	"io"
	"sync"
)

const redactMask string = "***"

// scrubbingWriter replaces registered secret terms with a mask before
// forwarding log output. Credentials and tokens pass through several log
// lines (request echo, error bodies), so masking sits below the logger
// rather than at each call site.
type scrubbingWriter struct {
	m      sync.RWMutex
	writer io.Writer
	terms  [][]byte
}

// ScrubbingWriter allows registering further secret terms after creation.
type ScrubbingWriter interface {
	io.Writer
	AddTerm(term string)
}

func NewScrubbingWriter(writer io.Writer, terms ...string) ScrubbingWriter {
	w := &scrubbingWriter{writer: writer}
	for _, term := range terms {
		w.AddTerm(term)
	}
	return w
}

func (w *scrubbingWriter) AddTerm(term string) {
	if term == "" {
		return
	}
	w.m.Lock()
	defer w.m.Unlock()
	w.terms = append(w.terms, []byte(term))
}

func (w *scrubbingWriter) Write(p []byte) (int, error) {
	w.m.RLock()
	defer w.m.RUnlock()

	scrubbed := p
	for _, term := range w.terms {
		scrubbed = bytes.ReplaceAll(scrubbed, term, []byte(redactMask))
	}
	if _, err := w.writer.Write(scrubbed); err != nil {
		return 0, err
	}
	// report the original length so the zerolog pipeline stays intact
	return len(p), nil
}
