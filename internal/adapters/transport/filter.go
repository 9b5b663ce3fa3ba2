package transport

// Filter projects a normalized response down to a single named field.
// With an empty field the data passes through unchanged. Lists project
// the field from every element; single objects return the field value.
// A missing field is logged and yields an empty value rather than an
// error, and the [nil] sentinel from an empty results response is
// treated as "no data".
func (p *Pipeline) Filter(data any, field string) any {
	if data == nil {
		return nil
	}
	if isEmptySentinel(data) {
		return []any{}
	}

	switch value := data.(type) {
	case []any:
		if field == "" {
			return value
		}
		if len(value) == 0 {
			return []any{}
		}

		representative, ok := value[0].(map[string]any)
		if !ok {
			p.sink.Printf("Error: '%s' is not a key in the dictionary.", field)
			return []any{}
		}
		if _, ok := representative[field]; !ok {
			p.sink.Printf("Error: '%s' is not a key in the dictionary.", field)
			return []any{}
		}

		projected := make([]any, 0, len(value))
		for _, item := range value {
			entry, _ := item.(map[string]any)
			projected = append(projected, entry[field])
		}
		return projected

	case map[string]any:
		if field == "" {
			return value
		}
		if fieldValue, ok := value[field]; ok {
			return fieldValue
		}
		p.sink.Printf("Error: '%s' is not a key in the dictionary.", field)
		return nil

	default:
		return data
	}
}

func isEmptySentinel(data any) bool {
	list, ok := data.([]any)
	return ok && len(list) == 1 && list[0] == nil
}
