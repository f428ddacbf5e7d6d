package entity

// Property decoding helpers. The store returns int64 for integers and
// float64 for floats; writes done through Set round-trip those types, but a
// record written by another client may hold either numeric form.

func stringProp(props map[string]any, name string) string {
	if v, ok := props[name].(string); ok {
		return v
	}
	return ""
}

func floatProp(props map[string]any, name string) float64 {
	switch v := props[name].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func intProp(props map[string]any, name string) int64 {
	switch v := props[name].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}
