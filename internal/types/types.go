// internal/types/types.go
// Package types contains shared data types that have no CGO dependencies.
// This allows packages like the client to use Record without pulling in sqlite-vec.
package types

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a record is not found
var ErrNotFound = errors.New("record not found")

// Source identifies which path produced an embedding vector
type Source string

const (
	SourceMock     Source = "mock"
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Valid returns true if the Source is a known valid source
func (s Source) Valid() bool {
	switch s {
	case SourceMock, SourceModel, SourceFallback:
		return true
	}
	return false
}

// Validate returns an error if the Source is invalid
func (s Source) Validate() error {
	if !s.Valid() {
		return fmt.Errorf("invalid source %q: must be mock, model, or fallback", s)
	}
	return nil
}

// Record represents a stored embedding entry
type Record struct {
	ID        int64     `json:"id"`
	TextHash  string    `json:"text_hash"`
	Text      string    `json:"text"`
	Source    Source    `json:"source"`
	Model     string    `json:"model,omitempty"`
	Dim       int       `json:"dim"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchOpts configures similarity search behavior
type SearchOpts struct {
	Limit  int
	Source Source
	Model  string
}

// ListOpts configures list behavior
type ListOpts struct {
	Limit  int
	Offset int
	Source Source
	Model  string
}
