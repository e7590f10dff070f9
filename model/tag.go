package model

import (
	"strings"
)

// TagName is the struct tag key read by the registry.
const TagName = "jmapper"

// Tag represents parsed jmapper tags
type Tag struct {
	Column string
	Skip   bool
}

// ParseTag parses the "jmapper" tag string. Options are separated by spaces,
// semicolons or commas; "-" skips the field and "column:Name" overrides the
// source column.
func ParseTag(tagStr string) *Tag {
	tag := &Tag{}
	tagStr = strings.TrimSpace(tagStr)
	if tagStr == "" {
		return tag
	}
	if tagStr == "-" {
		tag.Skip = true
		return tag
	}

	parts := strings.FieldsFunc(tagStr, func(r rune) bool {
		return r == ' ' || r == ';' || r == ','
	})

	for _, part := range parts {
		kv := strings.SplitN(part, ":", 2)
		key := strings.ToLower(strings.TrimSpace(kv[0]))
		var val string
		if len(kv) > 1 {
			val = strings.TrimSpace(kv[1])
		}

		switch key {
		case "column":
			tag.Column = val
		case "-":
			tag.Skip = true
		}
	}
	return tag
}
