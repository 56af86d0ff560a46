package differ

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/5sensprod/possync/pkg/errors"
	"github.com/5sensprod/possync/pkg/matcher"
	"github.com/5sensprod/possync/pkg/records"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates a record was added.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates a record was updated.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates a record was removed.
	ChangeTypeRemove ChangeType = "remove"
)

// Update is a matched pair whose fields differ.
type Update struct {
	ID      string           // id of the local record
	Local   *records.Product // current record
	Source  *records.Product // record carrying the new values
	By      matcher.By       // key the pair was matched on
	Changes []Diff
}

// Changeset represents the changes between a local collection and a
// source.
type Changeset struct {
	Updated []Update
	Added   []*records.Product
	Removed []*records.Product
	Summary Summary
}

// Summary provides summary statistics for a changeset.
type Summary struct {
	Added        int
	Updated      int
	Removed      int
	FieldChanges int
	TotalChanges int
}

// NewChangeset assembles a changeset and computes its summary.
func NewChangeset(updated []Update, added, removed []*records.Product) *Changeset {
	c := &Changeset{Updated: updated, Added: added, Removed: removed}
	c.Summary = calculateSummary(c)
	return c
}

// Changeset diffs every matched pair and collects unmatched source records
// as additions. removed carries records another step decided to drop.
func (d *Differ) Changeset(match *matcher.Result, fields []string, removed []*records.Product) *Changeset {
	var updated []Update
	for _, pair := range match.Pairs {
		if diffs := d.Diff(pair.A, pair.B, fields); len(diffs) > 0 {
			updated = append(updated, Update{
				ID:      pair.A.Key(),
				Local:   pair.A,
				Source:  pair.B,
				By:      pair.By,
				Changes: diffs,
			})
		}
	}
	return NewChangeset(updated, match.UnmatchedB, removed)
}

func calculateSummary(c *Changeset) Summary {
	fieldChanges := 0
	for _, u := range c.Updated {
		fieldChanges += len(u.Changes)
	}
	return Summary{
		Added:        len(c.Added),
		Updated:      len(c.Updated),
		Removed:      len(c.Removed),
		FieldChanges: fieldChanges,
		TotalChanges: len(c.Added) + len(c.Updated) + len(c.Removed),
	}
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return c.Summary.TotalChanges > 0
}

// IsEmpty returns true if the changeset contains no changes.
func (c *Changeset) IsEmpty() bool {
	return c.Summary.TotalChanges == 0
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if c.IsEmpty() {
		return "No changes detected"
	}

	parts := []string{}
	if len(c.Added) > 0 {
		parts = append(parts, fmt.Sprintf("%d added", len(c.Added)))
	}
	if len(c.Updated) > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", len(c.Updated)))
	}
	if len(c.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", len(c.Removed)))
	}
	return fmt.Sprintf("Changeset: Products: %s (Total: %d changes)", strings.Join(parts, ", "), c.Summary.TotalChanges)
}

// Print outputs a detailed, human-readable view of the changeset to stdout.
func (c *Changeset) Print() {
	c.Fprint(os.Stdout)
}

// Fprint writes the detailed view to w.
func (c *Changeset) Fprint(w io.Writer) {
	fmt.Fprintln(w, c.String())
	fmt.Fprintln(w, strings.Repeat("─", 80))

	if len(c.Added) > 0 {
		fmt.Fprintf(w, "\n➕ Added Products (%d):\n", len(c.Added))
		for _, p := range c.Added {
			fmt.Fprintf(w, "  • %s\n", label(p))
		}
	}

	if len(c.Updated) > 0 {
		fmt.Fprintf(w, "\n🔄 Updated Products (%d):\n", len(c.Updated))
		for _, u := range c.Updated {
			fmt.Fprintf(w, "  • %s (by %s):\n", label(u.Local), u.By)
			for _, change := range u.Changes {
				fmt.Fprintf(w, "    - %s: %v → %v\n", change.Field, change.LocalValue, change.RemoteValue)
			}
		}
	}

	if len(c.Removed) > 0 {
		fmt.Fprintf(w, "\n⚠️  Removed Products (%d):\n", len(c.Removed))
		for _, p := range c.Removed {
			fmt.Fprintf(w, "  • %s\n", label(p))
		}
	}
}

func label(p *records.Product) string {
	id := p.Key()
	switch {
	case id == "":
		return p.Name
	case p.Name != "" && p.Name != id:
		return fmt.Sprintf("%s (%s)", id, p.Name)
	default:
		return id
	}
}

// ApplyStrategy represents how to apply changes.
type ApplyStrategy string

const (
	// ApplyAll applies all changes including removals.
	ApplyAll ApplyStrategy = "all"

	// ApplyAdditive only applies additions and updates, never removes.
	ApplyAdditive ApplyStrategy = "additive"

	// ApplyUpdatesOnly only applies updates to existing records.
	ApplyUpdatesOnly ApplyStrategy = "updates-only"

	// ApplyAdditionsOnly only applies new additions.
	ApplyAdditionsOnly ApplyStrategy = "additions-only"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (ApplyStrategy, error) {
	switch ApplyStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ApplyAll:
		return ApplyAll, nil
	case ApplyAdditive:
		return ApplyAdditive, nil
	case ApplyUpdatesOnly:
		return ApplyUpdatesOnly, nil
	case ApplyAdditionsOnly:
		return ApplyAdditionsOnly, nil
	}
	return "", errors.NewValidationError("strategy", s, "must be one of all, additive, updates-only, additions-only")
}

// Filter filters the changeset based on the apply strategy.
func (c *Changeset) Filter(strategy ApplyStrategy) *Changeset {
	filtered := &Changeset{}

	switch strategy {
	case ApplyAll:
		return c

	case ApplyAdditive:
		filtered.Added = c.Added
		filtered.Updated = c.Updated

	case ApplyUpdatesOnly:
		filtered.Updated = c.Updated

	case ApplyAdditionsOnly:
		filtered.Added = c.Added
	}

	filtered.Summary = calculateSummary(filtered)
	return filtered
}
