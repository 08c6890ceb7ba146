package cache

import "github.com/matzehuels/rose/pkg/core/radial"

// Keyer derives cache keys. Alternative implementations can namespace keys,
// see [ScopedKeyer].
type Keyer interface {
	// LayoutKey returns the key of a layout result for a graph snapshot.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	// ArtifactKey returns the key of a rendered artifact for a positioned
	// graph.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the inputs besides the snapshot that change a layout.
type LayoutKeyOpts struct {
	Options radial.Options
}

// ArtifactKeyOpts are the inputs besides the positions that change an
// artifact.
type ArtifactKeyOpts struct {
	Format        string
	ShowRelations bool
	Detailed      bool
}

// DefaultKeyer produces plain prefixed content-hash keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts.Options.WithDefaults())
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
