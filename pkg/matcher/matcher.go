// Package matcher pairs records of two collections that describe the same
// product.
//
// Collection B is indexed by id, identity code and SKU. Each record of A
// probes the index in that order and the first hit wins. When two records
// of B share an index key the later one owns it.
package matcher

import (
	"strings"

	"github.com/5sensprod/possync/pkg/keys"
	"github.com/5sensprod/possync/pkg/records"
)

// By names the key a pair was matched on.
type By string

// Match keys, in probe order.
const (
	ByID           By = "id"
	ByIdentityCode By = "identity_code"
	BySKU          By = "sku"
	ByName         By = "name"
)

// Pair links a record of A to a record of B.
type Pair struct {
	A      *records.Product
	B      *records.Product
	AIndex int
	BIndex int
	By     By
}

// Result is the outcome of Match.
type Result struct {
	Pairs      []Pair
	UnmatchedA []*records.Product
	UnmatchedB []*records.Product
}

// Stats summarizes a result.
type Stats struct {
	Matched    int
	UnmatchedA int
	UnmatchedB int
	ByKey      map[By]int
}

// Stats counts pairs by key.
func (r *Result) Stats() Stats {
	s := Stats{
		Matched:    len(r.Pairs),
		UnmatchedA: len(r.UnmatchedA),
		UnmatchedB: len(r.UnmatchedB),
		ByKey:      make(map[By]int),
	}
	for _, p := range r.Pairs {
		s.ByKey[p.By]++
	}
	return s
}

// Options configures matching.
type Options struct {
	NameFallback bool
}

// Option is a functional option for Match.
type Option func(*Options)

// WithNameFallback adds a last probe on normalized name.
func WithNameFallback() Option {
	return func(o *Options) {
		o.NameFallback = true
	}
}

const (
	prefixID   = "id:"
	prefixCode = "code:"
	prefixSKU  = "sku:"
	prefixName = "name:"
)

// Match pairs records of a with records of b. Several A records may land
// on the same B record; resolving duplicates before matching avoids that.
func Match(a, b []*records.Product, opts ...Option) *Result {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}

	index := make(map[string]int, len(b)*3)
	for i, p := range b {
		if p == nil {
			continue
		}
		for _, k := range probeKeys(p, o) {
			index[k.key] = i
		}
	}

	result := &Result{}
	paired := make([]bool, len(b))
	for ai, p := range a {
		if p == nil {
			continue
		}
		hit := false
		for _, k := range probeKeys(p, o) {
			bi, ok := index[k.key]
			if !ok {
				continue
			}
			paired[bi] = true
			result.Pairs = append(result.Pairs, Pair{A: p, B: b[bi], AIndex: ai, BIndex: bi, By: k.by})
			hit = true
			break
		}
		if !hit {
			result.UnmatchedA = append(result.UnmatchedA, p)
		}
	}

	for i, p := range b {
		if p != nil && !paired[i] {
			result.UnmatchedB = append(result.UnmatchedB, p)
		}
	}
	return result
}

type probe struct {
	key string
	by  By
}

func probeKeys(p *records.Product, o *Options) []probe {
	out := make([]probe, 0, 4)
	if id := strings.TrimSpace(p.Key()); id != "" {
		out = append(out, probe{prefixID + id, ByID})
	}
	if code := keys.ExtractIdentityCode(p); code != "" {
		out = append(out, probe{prefixCode + code, ByIdentityCode})
	}
	if sku := strings.TrimSpace(p.SKU); sku != "" {
		out = append(out, probe{prefixSKU + sku, BySKU})
	}
	if o.NameFallback {
		if name := keys.NormalizeName(p.Name); name != "" {
			out = append(out, probe{prefixName + name, ByName})
		}
	}
	return out
}
