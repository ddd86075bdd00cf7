package hierarchy

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/devicelab-dev/uimatch/pkg/core"
)

// ParsePageSource parses Android UI hierarchy XML into root elements, one per window.
// Supports both formats:
// - UIAutomator dump: <node class="..."> elements
// - Appium format: class name as element tag (e.g., <android.widget.FrameLayout>)
func ParsePageSource(data []byte) ([]*Element, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	var (
		roots          []*Element
		stack          []*Element
		foundHierarchy bool
	)

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid page source: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "hierarchy" && len(stack) == 0 {
				foundHierarchy = true
				continue
			}
			if !foundHierarchy {
				return nil, fmt.Errorf("invalid page source: <%s> outside hierarchy", t.Name.Local)
			}

			elem := &Element{Attributes: make(map[string]string, len(t.Attr)+1)}
			if t.Name.Local != "node" {
				elem.Attributes[AttrClass] = t.Name.Local
			}
			for _, attr := range t.Attr {
				elem.Attributes[attr.Name.Local] = attr.Value // class attr overrides the tag
			}
			if b, ok := elem.Attributes[AttrBounds]; ok {
				elem.Rect = parseBounds(b)
			}

			if len(stack) == 0 {
				roots = append(roots, elem)
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, elem)
			}
			stack = append(stack, elem)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if !foundHierarchy {
		return nil, fmt.Errorf("invalid page source: no hierarchy element found")
	}
	return roots, nil
}

// parseBounds parses Android bounds string "[x1,y1][x2,y2]" to Bounds.
func parseBounds(s string) core.Bounds {
	s = strings.ReplaceAll(s, "][", ",")
	s = strings.Trim(s, "[]")
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return core.Bounds{}
	}

	x1, _ := strconv.Atoi(parts[0])
	y1, _ := strconv.Atoi(parts[1])
	x2, _ := strconv.Atoi(parts[2])
	y2, _ := strconv.Atoi(parts[3])

	return core.Bounds{
		X:      x1,
		Y:      y1,
		Width:  x2 - x1,
		Height: y2 - y1,
	}
}

func formatBounds(b core.Bounds) string {
	return fmt.Sprintf("[%d,%d][%d,%d]", b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// WriteXML dumps roots as a UIAutomator page source. Any core.Node can be dumped;
// absent string attributes are omitted, nil roots and children are skipped.
func WriteXML(w io.Writer, roots []core.Node) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	start := xml.StartElement{Name: xml.Name{Local: "hierarchy"}, Attr: []xml.Attr{{Name: xml.Name{Local: "rotation"}, Value: "0"}}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for i, root := range roots {
		if root == nil {
			continue
		}
		if err := writeNode(enc, root, i); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func writeNode(enc *xml.Encoder, n core.Node, index int) error {
	attrs := []xml.Attr{xmlAttr(AttrIndex, strconv.Itoa(index))}
	for _, s := range []struct {
		name string
		get  func() (string, bool)
	}{
		{AttrText, n.Text},
		{AttrResourceID, n.ResourceName},
		{AttrClass, n.ClassName},
		{AttrPackage, n.PackageName},
		{AttrContentDesc, n.ContentDescription},
	} {
		if v, ok := s.get(); ok {
			attrs = append(attrs, xmlAttr(s.name, v))
		}
	}
	for _, f := range []struct {
		name string
		v    bool
	}{
		{AttrCheckable, n.IsCheckable()},
		{AttrChecked, n.IsChecked()},
		{AttrClickable, n.IsClickable()},
		{AttrEnabled, n.IsEnabled()},
		{AttrFocusable, n.IsFocusable()},
		{AttrFocused, n.IsFocused()},
		{AttrScrollable, n.IsScrollable()},
		{AttrLongClickable, n.IsLongClickable()},
		{AttrSelected, n.IsSelected()},
	} {
		attrs = append(attrs, xmlAttr(f.name, strconv.FormatBool(f.v)))
	}
	attrs = append(attrs, xmlAttr(AttrBounds, formatBounds(n.Bounds())))

	start := xml.StartElement{Name: xml.Name{Local: "node"}, Attr: attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for i := 0; i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if err := writeNode(enc, child, i); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func xmlAttr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// Snapshot is a JSON-friendly copy of a subtree.
type Snapshot struct {
	core.ElementInfo
	Children []*Snapshot `json:"children,omitempty"`
}

// TakeSnapshot copies n and its descendants. Returns nil for a nil node.
func TakeSnapshot(n core.Node) *Snapshot {
	info := core.InfoOf(n)
	if info == nil {
		return nil
	}
	s := &Snapshot{ElementInfo: *info}
	for i := 0; i < n.ChildCount(); i++ {
		if c := TakeSnapshot(n.Child(i)); c != nil {
			s.Children = append(s.Children, c)
		}
	}
	return s
}
