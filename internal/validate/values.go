package validate

// Typed accessors for cleaned maps. Handlers use these to move validated
// payloads into store call arguments.

// Str returns the string at key, or "" when absent.
func Str(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// StrPtr returns a pointer to the string at key, or nil when absent.
func StrPtr(m map[string]any, key string) *string {
	if v, ok := m[key].(string); ok {
		return &v
	}
	return nil
}

// F64 returns the number at key, or 0 when absent.
func F64(m map[string]any, key string) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	return 0
}

// F64Ptr returns a pointer to the number at key, or nil when absent.
func F64Ptr(m map[string]any, key string) *float64 {
	if v, ok := m[key].(float64); ok {
		return &v
	}
	return nil
}

// I64Ptr returns a pointer to the integer at key, or nil when absent.
func I64Ptr(m map[string]any, key string) *int64 {
	if v, ok := m[key].(int64); ok {
		return &v
	}
	return nil
}

// BoolVal returns the bool at key, or false when absent.
func BoolVal(m map[string]any, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

// Has reports whether key survived cleaning.
func Has(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}
