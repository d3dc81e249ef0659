// Package status implements the analyzer's diagnostic payload: a closed
// error-kind enumeration (§7) carried alongside the file/code-location
// error-info format required by §6, with accumulation so that a single
// status can report several diagnostics at once (name-resolution
// candidates, joined group-binding failures, merged top-level element
// errors).
package status

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Code is the closed error-kind enumeration from §7.
type Code string

const (
	// CodeNotFound reports a name, type, or module that could not be
	// resolved.
	CodeNotFound Code = "NOT_FOUND"
	// CodeAlreadyExists reports a duplicate declaration (name, type,
	// signature).
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	// CodeInvalidArgument reports a binding or negotiation failure
	// caused by an incompatible argument or hint.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	// CodeFailedPrecondition reports a rule violation that should have
	// been prevented earlier in the pipeline (e.g. rebinding a
	// non-basic argument).
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	// CodeUnimplemented reports a construct the analyzer does not yet
	// support (e.g. a with-expression).
	CodeUnimplemented Code = "UNIMPLEMENTED"
	// CodeInternal reports an invariant violation: a bug in the
	// analyzer rather than a fault in the analyzed module.
	CodeInternal Code = "INTERNAL"
)

// ErrorInfo is one diagnostic: a source location plus a human message.
// Mirrors the error-payload format in §6.
type ErrorInfo struct {
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Message  string `json:"message"`
	Snippet  string `json:"snippet,omitempty"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// Status is the structured diagnostic payload attached to an analyzer
// result. A single Status may carry multiple ErrorInfo entries so that
// one failing element does not hide another's diagnostics (§4.7, §7).
type Status struct {
	Code     Code        `json:"code"`
	FileURL  string      `json:"file_url,omitempty"`
	CodeURL  string      `json:"code_url,omitempty"`
	Errors   []ErrorInfo `json:"errors"`
	candidat []string
}

// New builds a single-diagnostic Status.
func New(code Code, msg string) *Status {
	return &Status{Code: code, Errors: []ErrorInfo{{Message: msg}}}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(code Code, format string, args ...any) *Status {
	return New(code, fmt.Sprintf(format, args...))
}

// NotFound builds a not-found status. Candidates are closest-name
// suggestions (§4.1 step 6) and are rendered into the message.
func NotFound(msg string, candidates ...string) *Status {
	s := New(CodeNotFound, msg)
	s.candidat = candidates
	if len(candidates) > 0 {
		s.Errors[0].Message = fmt.Sprintf("%s (did you mean: %s?)", msg, strings.Join(candidates, ", "))
	}
	return s
}

// Internal builds a precondition-violation status with the fixed "bug
// notice" suffix required by §7.
func Internal(msg string) *Status {
	return New(CodeInternal, msg+": this indicates a bug in the analyzer, not in the analyzed module")
}

// Error implements the error interface.
func (s *Status) Error() string {
	if s == nil {
		return ""
	}
	parts := make([]string, 0, len(s.Errors))
	for _, e := range s.Errors {
		if e.Line > 0 {
			parts = append(parts, fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message))
		} else {
			parts = append(parts, e.Message)
		}
	}
	return fmt.Sprintf("%s: %s", s.Code, strings.Join(parts, "; "))
}

// Ok reports whether s represents success (nil or no recorded errors).
func (s *Status) Ok() bool {
	return s == nil || len(s.Errors) == 0
}

// JSON renders the status as the §6 error-payload format.
func (s *Status) JSON() string {
	b, _ := json.MarshalIndent(s, "", "  ")
	return string(b)
}

// WithLocation attaches a source location to every ErrorInfo currently
// held by s and returns s for chaining.
func (s *Status) WithLocation(line, col int, snippet string) *Status {
	for i := range s.Errors {
		s.Errors[i].Line = line
		s.Errors[i].Column = col
		s.Errors[i].Snippet = snippet
	}
	return s
}

// WithFile attaches the file URL required by §6 and returns s.
func (s *Status) WithFile(fileURL string) *Status {
	s.FileURL = fileURL
	return s
}

// Join merges zero or more statuses into one, concatenating their
// ErrorInfo lists. Used by §4.5 group-binding candidate accumulation and
// §4.7 top-level element error merging. Nil and ok statuses are skipped.
// Join returns nil if every input is ok.
func Join(statuses ...*Status) *Status {
	var out *Status
	for _, s := range statuses {
		if s.Ok() {
			continue
		}
		if out == nil {
			out = &Status{Code: s.Code}
		}
		out.Errors = append(out.Errors, s.Errors...)
		if out.Code != s.Code {
			out.Code = CodeInvalidArgument
		}
	}
	return out
}

// TypeMismatch builds an invalid-argument status describing a type
// incompatibility, rendering a unified-diff-style context line between
// the expected and actual type strings so the reader can see where the
// two descriptors diverge at a glance.
func TypeMismatch(where, expected, actual string) *Status {
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  1,
	})
	s := Newf(CodeInvalidArgument, "%s: expected %s, got %s", where, expected, actual)
	s.Errors[0].Expected = expected
	s.Errors[0].Actual = actual
	if diff != "" {
		s.Errors[0].Snippet = diff
	}
	return s
}
