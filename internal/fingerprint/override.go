package fingerprint

// OverrideKeys are the recognized force-rebuild keys in artifact data.
// Any of them set to boolean true requests an unconditional rebuild.
var OverrideKeys = []string{"regenerate", "force", "force_regenerate", "regen"}

// ForcedByData reports whether the artifact's data map carries a
// recognized override key with the boolean value true.
//
// Absent keys are absent, not false. Non-boolean values under a
// recognized key are ignored rather than coerced; "force: yes-please"
// is a typo, not a rebuild request.
func ForcedByData(data map[string]any) bool {
	for _, key := range OverrideKeys {
		if v, ok := data[key]; ok {
			if b, ok := v.(bool); ok && b {
				return true
			}
		}
	}
	return false
}
