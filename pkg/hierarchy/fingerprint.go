package hierarchy

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/devicelab-dev/uimatch/pkg/core"
)

// Fingerprint hashes everything the matcher can observe in roots: structure, string
// attributes (with presence), flags and bounds. Two trees with equal fingerprints are
// indistinguishable to a selector.
func Fingerprint(roots []core.Node) uint64 {
	d := xxhash.New()
	for _, root := range roots {
		if root == nil {
			continue
		}
		writeFingerprint(d, root, 0)
	}
	return d.Sum64()
}

func writeFingerprint(d *xxhash.Digest, n core.Node, depth int) {
	_, _ = d.WriteString("\x00" + strconv.Itoa(depth))
	for _, get := range []func() (string, bool){
		n.ClassName, n.Text, n.ContentDescription, n.ResourceName, n.PackageName,
	} {
		if v, ok := get(); ok {
			_, _ = d.WriteString("\x01" + v)
		} else {
			_, _ = d.WriteString("\x02")
		}
	}
	var flags [9]byte
	for i, v := range []bool{
		n.IsCheckable(), n.IsChecked(), n.IsClickable(), n.IsEnabled(), n.IsFocusable(),
		n.IsFocused(), n.IsLongClickable(), n.IsScrollable(), n.IsSelected(),
	} {
		if v {
			flags[i] = '1'
		} else {
			flags[i] = '0'
		}
	}
	_, _ = d.Write(flags[:])
	b := n.Bounds()
	_, _ = d.WriteString(formatBounds(b))

	for i := 0; i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil {
			writeFingerprint(d, c, depth+1)
		}
	}
}
