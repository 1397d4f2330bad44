package schedule

import (
	"fmt"
	"io"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// Artifact is the serialisable form of a Result. Connectors are keyed as
// "node-name:output-index"; the same graph and target always encode to the
// same bytes.
type Artifact struct {
	ComputeSequence []string                      `cbor:"compute_sequence"`
	Allocations     map[string]ArtifactAllocation `cbor:"allocations"`
	MaxUsages       map[string]int                `cbor:"max_usages"`
}

// ArtifactAllocation mirrors BufferAllocation with portable field types.
type ArtifactAllocation struct {
	MemoryLocation string `cbor:"memory_location"`
	Type           string `cbor:"type"`
	Size           int    `cbor:"size"`
	Shape          []int  `cbor:"shape"`
	ParentShape    []int  `cbor:"parent_shape"`
	Strides        []int  `cbor:"strides"`
	Start          int    `cbor:"start"`
}

// Artifact converts the result into its serialisable form.
func (r *Result) Artifact() *Artifact {
	a := &Artifact{
		Allocations: make(map[string]ArtifactAllocation, len(r.Allocations)),
		MaxUsages:   make(map[string]int, len(r.MaxUsages)),
	}
	for _, n := range r.ComputeSequence {
		a.ComputeSequence = append(a.ComputeSequence, n.Name())
	}
	for conn, alloc := range r.Allocations {
		key := fmt.Sprintf("%s:%d", conn.Owner().Name(), conn.Index())
		a.Allocations[key] = ArtifactAllocation{
			MemoryLocation: alloc.MemoryLocation.String(),
			Type:           alloc.Type.String(),
			Size:           alloc.Size,
			Shape:          alloc.Shape,
			ParentShape:    alloc.ParentShape,
			Strides:        alloc.Strides,
			Start:          alloc.Start,
		}
	}
	for loc, usage := range r.MaxUsages {
		a.MaxUsages[loc.String()] = usage
	}
	return a
}

// Keys returns the allocation keys in sorted order.
func (a *Artifact) Keys() []string {
	keys := make([]string, 0, len(a.Allocations))
	for k := range a.Allocations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Encode writes the artifact as canonical CBOR. Canonical map-key ordering
// keeps the encoding byte-for-byte deterministic.
func (a *Artifact) Encode(w io.Writer) error {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return err
	}
	return mode.NewEncoder(w).Encode(a)
}

// DecodeArtifact reads a canonical CBOR artifact.
func DecodeArtifact(r io.Reader) (*Artifact, error) {
	var a Artifact
	if err := cbor.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("schedule: decoding artifact: %w", err)
	}
	return &a, nil
}
