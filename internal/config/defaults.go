package config

// GetDefaults returns the default configuration values applied before
// any plan file or environment override.
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		// reference_ref: branch the modified set is computed against.
		// Unlike ref this defaults unconditionally; diffing needs a base
		// even in local mode.
		"discover.reference_ref": DefaultRef,
	}
}
