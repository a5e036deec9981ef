package utils

import (
	"errors"
	"fmt"
	"sync"
)

// ErrorKind categorises failures so retry and escalation can be decided
// without inspecting error strings.
type ErrorKind string

const (
	NetworkError        ErrorKind = "network_error"
	DatabaseError       ErrorKind = "database_error"
	DataValidationError ErrorKind = "data_validation_error"
	FileIOError         ErrorKind = "file_io_error"
	ParsingError        ErrorKind = "parsing_error"
	UnknownError        ErrorKind = "unknown_error"
)

// ClassifiedError attaches an ErrorKind to an underlying error.
type ClassifiedError struct {
	Kind ErrorKind
	Err  error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("[%s] %v", e.Kind, e.Err)
}

func (e *ClassifiedError) Unwrap() error { return e.Err }

// Classify wraps err with kind. A nil err stays nil.
func Classify(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{Kind: kind, Err: err}
}

// KindOf returns the kind of the outermost ClassifiedError in err's chain,
// or UnknownError.
func KindOf(err error) ErrorKind {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return UnknownError
}

// escalationThreshold is the number of same kind+context errors tolerated
// before the handler asks the caller to stop.
const escalationThreshold = 10

// ErrorHandler logs classified errors and counts them per kind+context.
// It is safe for concurrent use.
type ErrorHandler struct {
	logger *Logger

	mu     sync.Mutex
	counts map[string]int
}

// NewErrorHandler creates an ErrorHandler logging through logger.
func NewErrorHandler(logger *Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger, counts: make(map[string]int)}
}

// Handle logs err under kind and context. It returns false when the caller
// should stop: the error was fatal or its kind+context occurred more than
// escalationThreshold times.
func (h *ErrorHandler) Handle(err error, kind ErrorKind, context string, fatal bool) bool {
	key := string(kind) + ":" + context

	h.mu.Lock()
	h.counts[key]++
	n := h.counts[key]
	h.mu.Unlock()

	if fatal {
		h.logger.Critical("FATAL [%s] %s: %v", kind, context, err)
		return false
	}

	h.logger.Error("[%s] %s: %v", kind, context, err)
	if n > escalationThreshold {
		h.logger.Critical("too many %s errors (%d), stopping", key, n)
		return false
	}
	return true
}

// Summary returns a copy of the per kind+context counters.
func (h *ErrorHandler) Summary() map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]int, len(h.counts))
	for k, v := range h.counts {
		out[k] = v
	}
	return out
}

// Merge adds other's counters to h.
func (h *ErrorHandler) Merge(other *ErrorHandler) {
	counts := other.Summary()

	h.mu.Lock()
	defer h.mu.Unlock()
	for k, n := range counts {
		h.counts[k] += n
	}
}

// Reset clears all counters.
func (h *ErrorHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.counts)
}
