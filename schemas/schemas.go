// Package schemas embeds the JSON Schema documents for category rule files, keyword catalogs
// and the configuration file.
package schemas

import _ "embed"

// CategoryRules validates a category rule file.
//
//go:embed category_rules.schema.json
var CategoryRules string

// Keywords validates a keyword catalog.
//
//go:embed keywords.schema.json
var Keywords string

// Config validates the configuration file.
//
//go:embed config.schema.json
var Config string

// All maps each embedded schema file name to its content.
func All() map[string]string {
	return map[string]string{
		"category_rules.schema.json": CategoryRules,
		"keywords.schema.json":       Keywords,
		"config.schema.json":         Config,
	}
}
