package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/engine/pkg/vdom"
)

type attribute struct {
	key   string
	value string
	bare  bool
}

// attributes returns the renderable attributes of an element in sorted order.
func attributes(node *vdom.VNode) []attribute {
	if len(node.Props) == 0 {
		return nil
	}
	keys := make([]string, 0, len(node.Props))
	for key := range node.Props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]attribute, 0, len(keys))
	for _, key := range keys {
		value := node.Props[key]
		if strings.HasPrefix(key, "_") || key == "key" || isFunc(value) {
			continue
		}
		name := key
		switch key {
		case "className":
			name = "class"
		case "htmlFor":
			name = "for"
		}

		if isBooleanAttr(name) {
			if b, ok := value.(bool); ok {
				if b {
					out = append(out, attribute{key: name, bare: true})
				}
				continue
			}
		}

		if s := attrToString(value); s != "" {
			out = append(out, attribute{key: name, value: s})
		}
	}
	return out
}

// isFunc reports whether a prop holds a callback. Callbacks have no meaning
// in server output.
func isFunc(value any) bool {
	if value == nil {
		return false
	}
	return strings.HasPrefix(fmt.Sprintf("%T", value), "func")
}

// attrToString converts an attribute value to a string.
func attrToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
