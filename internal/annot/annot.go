// Package annot provides path-addressable access to the ETAD annotation
// metadata. The core consumes the Doc interface only; the XML implementation
// in this package covers the standard annotation document layout.
package annot

// Doc is one scope of the annotation tree: either the whole document or a
// single subtree (e.g. one etadBurst record).
//
// Lookup paths are element names separated by "/". A leading ".//" (or "//")
// searches descendants at any depth for the first segment; a final "@name"
// segment selects an attribute of the matched elements.
type Doc interface {
	// Lookup returns the text of every node matching path.
	Lookup(path string) Value

	// Subtrees returns a scoped Doc for every element matching path.
	Subtrees(path string) []Doc
}
