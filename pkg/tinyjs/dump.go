// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package tinyjs

import (
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"nickandperla.net/tinyjs/internal/value"
)

// DumpYAML writes the global scope as a YAML mapping in binding order.
// Natives and prelude functions are left out unless all is set.
func (r *Runtime) DumpYAML(w io.Writer, all bool) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, l := range r.evaluator.Root().Children() {
		if value.IsHidden(l.Name) {
			continue
		}
		if !all && (l.Var.Native() != nil || r.evaluator.IsPrelude(l.Name)) {
			continue
		}
		doc.Content = append(doc.Content, keyNode(l.Name), yamlNode(l.Var, make(map[*value.Var]bool)))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func keyNode(name string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
}

func yamlNode(v *value.Var, path map[*value.Var]bool) *yaml.Node {
	v = v.Unwrap()
	if path[v] {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null", LineComment: "circular"}
	}
	switch v.Type() {
	case value.Undefined, value.Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case value.Boolean:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v.String()}
	case value.Integer:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: v.String()}
	case value.Double:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(v.Float(), 'f', -1, 64)}
	case value.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.String()}
	case value.Function:
		n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Signature()}
		if strings.Contains(n.Value, "\n") {
			n.Style = yaml.LiteralStyle
		}
		return n
	}

	path[v] = true
	defer delete(path, v)

	if v.Type() == value.Array {
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, l := range v.Children() {
			n.Content = append(n.Content, yamlNode(l.Var, path))
		}
		return n
	}
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, l := range v.Children() {
		if value.IsHidden(l.Name) {
			continue
		}
		n.Content = append(n.Content, keyNode(l.Name), yamlNode(l.Var, path))
	}
	return n
}
