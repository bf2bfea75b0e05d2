package candidate

import (
	"time"

	"github.com/google/uuid"
)

// Named vectors carried by each candidate point. All three share one
// embedding model and dimensionality.
const (
	VectorStory       = "story"
	VectorPersonality = "personality"
	VectorResume      = "resume"
)

// VectorNames lists every named vector in collection schema order.
var VectorNames = []string{VectorStory, VectorPersonality, VectorResume}

// Record is the unit of storage and retrieval: one resume with its raw
// text, optional derived narratives, and the embedding vectors that were
// successfully generated. A vector is present only when its backing text
// is present.
type Record struct {
	ID              string
	Filename        string
	RawText         string
	StoryText       string
	PersonalityText string
	Vectors         map[string][]float32
	ProcessedAt     time.Time
}

// HasVector reports whether the named vector was generated for this record.
func (r *Record) HasVector(name string) bool {
	if r == nil {
		return false
	}
	return len(r.Vectors[name]) > 0
}

// idNamespace scopes point IDs so the same filename always maps to the
// same point. Re-ingesting a filename therefore overwrites rather than
// duplicates.
const idNamespace = "semantic-ats/resume/"

// PointID derives the stable point identifier for a source filename.
func PointID(filename string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(idNamespace+filename)).String()
}

// Outcome classifies how completely a resume was processed.
type Outcome int

const (
	// OutcomeFailed means the resume embedding itself could not be
	// produced; the record is not indexable.
	OutcomeFailed Outcome = iota
	// OutcomePartial means the resume text and vector are present but at
	// least one derived narrative (or its vector) is missing.
	OutcomePartial
	// OutcomeFull means all three text+vector pairs are present.
	OutcomeFull
)

// String returns the lowercase name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeFull:
		return "full"
	case OutcomePartial:
		return "partial"
	default:
		return "failed"
	}
}

// Indexable reports whether a record with this outcome may be upserted.
func (o Outcome) Indexable() bool {
	return o == OutcomeFull || o == OutcomePartial
}
