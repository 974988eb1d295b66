package schema

import (
	"fmt"
	"io"
	"strings"

	"github.com/spaolacci/murmur3"
)

// Fingerprint returns a stable murmur3-128 digest of the spec's name,
// column declarations and index columns. Documentation fields are ignored.
func Fingerprint(spec TableSpec) string {
	h := murmur3.New128()

	io.WriteString(h, spec.Name)
	for _, c := range spec.Columns {
		io.WriteString(h, "\x00c\x00"+strings.ToLower(c.Name)+"\x00"+c.Declaration())
	}
	for _, col := range indexColumns(spec) {
		io.WriteString(h, "\x00i\x00"+strings.ToLower(col))
	}

	hi, lo := h.Sum128()
	return fmt.Sprintf("%016x%016x", hi, lo)
}
