/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package guard

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/beevik/etree"
)

// verifySVG checks that the renderer wrote a well-formed document with an
// <svg> root element.
func verifySVG(path string) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("renderer exited 0 but wrote no %s", filepath.Base(path))
		}
		return fmt.Errorf("renderer output %s is not well-formed XML: %v", filepath.Base(path), err)
	}

	root := doc.Root()
	if root == nil {
		return fmt.Errorf("renderer output %s has no root element", filepath.Base(path))
	}
	if root.Tag != "svg" {
		return fmt.Errorf("renderer output %s has root <%s>, expected <svg>", filepath.Base(path), root.FullTag())
	}
	return nil
}
