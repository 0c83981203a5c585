// Package validate checks generated dashboards and rules: every PromQL
// expression must parse and every metric it selects must be known.
package validate

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/vaccine-alert/tools/dashgen/rules"
)

// Result collects validation problems. Errors fail generation; warnings
// are reported only.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether there are no errors.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) merge(o Result) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// Expr parses expr and checks every selected metric name against known.
func Expr(where, expr string, known map[string]bool) Result {
	var res Result
	if expr == "" {
		res.Errors = append(res.Errors, where+": empty expression")
		return res
	}

	node, err := parser.ParseExpr(expr)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", where, err))
		return res
	}

	for _, name := range MetricNames(node) {
		if !known[name] {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: unknown metric %q", where, name))
		}
	}
	return res
}

// MetricNames returns the sorted, de-duplicated metric names selected in
// node.
func MetricNames(node parser.Node) []string {
	seen := map[string]struct{}{}
	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		if vs, ok := n.(*parser.VectorSelector); ok && vs.Name != "" {
			seen[vs.Name] = struct{}{}
		}
		return nil
	})

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Dashboard validates every panel target expression in dash. dash is
// walked in its JSON form so any panel type is covered.
func Dashboard(dash any, known map[string]bool) Result {
	var res Result

	data, err := json.Marshal(dash)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("encoding dashboard: %v", err))
		return res
	}
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("decoding dashboard: %v", err))
		return res
	}

	for _, p := range panelsOf(root) {
		title, _ := p["title"].(string)
		targets, _ := p["targets"].([]any)
		if len(targets) == 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("panel %q has no targets", title))
			continue
		}
		for _, t := range targets {
			tm, _ := t.(map[string]any)
			expr, _ := tm["expr"].(string)
			ref, _ := tm["refId"].(string)
			res.merge(Expr(fmt.Sprintf("panel %q target %s", title, ref), expr, known))
		}
	}
	return res
}

// panelsOf flattens top-level panels and the panels nested inside rows.
func panelsOf(root map[string]any) []map[string]any {
	var out []map[string]any
	top, _ := root["panels"].([]any)
	for _, p := range top {
		pm, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if pm["type"] == "row" {
			nested, _ := pm["panels"].([]any)
			for _, n := range nested {
				if nm, ok := n.(map[string]any); ok {
					out = append(out, nm)
				}
			}
			continue
		}
		out = append(out, pm)
	}
	return out
}

// Rules validates every rule expression. Names recorded by earlier rules
// count as known for later ones.
func Rules(known map[string]bool, crs ...rules.PrometheusRule) Result {
	var res Result

	all := make(map[string]bool, len(known))
	for k, v := range known {
		all[k] = v
	}
	for _, cr := range crs {
		for _, r := range cr.Rules() {
			if r.Record != "" {
				all[r.Record] = true
			}
		}
	}

	for _, cr := range crs {
		for _, r := range cr.Rules() {
			name := r.Record
			if name == "" {
				name = r.Alert
			}
			if name == "" {
				res.Errors = append(res.Errors, fmt.Sprintf("%s: rule without record or alert name", cr.Metadata.Name))
				continue
			}
			res.merge(Expr(cr.Metadata.Name+"/"+name, r.Expr, all))
			if r.Alert != "" && r.Labels["severity"] == "" {
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s/%s: alert without severity", cr.Metadata.Name, name))
			}
		}
	}
	return res
}
