package validator

import (
	"reflect"
	"strings"
)

// jsonTagName reports fields by their JSON name so failures read like the
// request body rather than Go identifiers.
func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// trimRoot drops the top-level struct name from a validator namespace.
func trimRoot(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
