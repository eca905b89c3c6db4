package etad

import (
	"fmt"
	"path/filepath"

	"github.com/rkm/s1etad/internal/annot"
	"github.com/rkm/s1etad/internal/store"
)

// OpenProduct loads an ETAD product from its directory layout: one
// annotation XML under annotation/ and one measurement file under
// measurement/.
func OpenProduct(dir string) (*Product, error) {
	annotPath, err := singleMatch(filepath.Join(dir, "annotation", "*.xml"))
	if err != nil {
		return nil, fmt.Errorf("open product %s: %w", dir, err)
	}
	measPath, err := singleMatch(filepath.Join(dir, "measurement", "*.json"))
	if err != nil {
		return nil, fmt.Errorf("open product %s: %w", dir, err)
	}

	doc, err := annot.LoadXML(annotPath)
	if err != nil {
		return nil, fmt.Errorf("open product %s: %w", dir, err)
	}
	root, err := store.LoadJSON(measPath)
	if err != nil {
		return nil, fmt.Errorf("open product %s: %w", dir, err)
	}

	return NewProduct(dir, doc, root)
}

// AnnotationPath returns the annotation file a product directory would be
// loaded from, without opening the product. Used by callers that watch the
// file for changes.
func AnnotationPath(dir string) (string, error) {
	return singleMatch(filepath.Join(dir, "annotation", "*.xml"))
}

func singleMatch(pattern string) (string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no file matches %s", pattern)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%d files match %s, expected one", len(matches), pattern)
	}
}
