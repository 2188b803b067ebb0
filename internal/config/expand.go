package config

import (
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var placeholderRe = regexp.MustCompile(`\$\{(\w+)\}`)

// ExpandEnv replaces ${NAME} with the value of the environment variable NAME.
// Unset variables expand to an empty string.
func ExpandEnv(value string) string {
	return placeholderRe.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(placeholderRe.FindStringSubmatch(match)[1])
	})
}

// expandNode expands placeholders in every scalar below node.
func expandNode(node *yaml.Node) {
	if node.Kind == yaml.ScalarNode {
		expanded := ExpandEnv(node.Value)
		if expanded == node.Value {
			return
		}
		node.Value = expanded
		// plain scalars are re-resolved so "${CHAT_ID}" can land in an int field
		if node.Style == 0 {
			node.Tag = ""
		}
		return
	}

	for _, child := range node.Content {
		expandNode(child)
	}
}
