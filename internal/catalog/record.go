package catalog

import "strings"

// ProductRecord is one spreadsheet row as a field-name to value mapping.
// Field names vary by casing across sheets, so lookups fall back to a
// case-insensitive scan. Records are immutable for the duration of a run.
type ProductRecord map[string]string

// Field returns the first non-empty value among the given field names,
// trying exact matches first and case-insensitive matches second.
func (r ProductRecord) Field(names ...string) string {
	for _, name := range names {
		if value, ok := r[name]; ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	for _, name := range names {
		for key, value := range r {
			if strings.EqualFold(key, name) && strings.TrimSpace(value) != "" {
				return strings.TrimSpace(value)
			}
		}
	}
	return ""
}

// Name returns the product name, or empty when the row has none.
func (r ProductRecord) Name() string {
	return r.Field("name", "Name", "product_name")
}

// Description returns the product description.
func (r ProductRecord) Description() string {
	return r.Field("description", "Description")
}

// Price returns the product price as written in the sheet.
func (r ProductRecord) Price() string {
	return r.Field("price", "Price")
}

// Tagline returns the short marketing line, if any.
func (r ProductRecord) Tagline() string {
	return r.Field("tagline", "Tagline")
}

// Title builds the publish title: "Name - Tagline" when a tagline exists.
func (r ProductRecord) Title() string {
	name := r.Name()
	if name == "" {
		name = "Product"
	}
	if tagline := r.Tagline(); tagline != "" {
		return name + " - " + tagline
	}
	return name
}

// Tags splits the comma-separated tags field. When the row carries no tags
// the product name is used as the single tag.
func (r ProductRecord) Tags() []string {
	raw := r.Field("tags", "Tags")
	if raw == "" {
		if name := r.Name(); name != "" {
			return []string{name}
		}
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
