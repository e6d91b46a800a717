package internal

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/Knetic/govaluate"
)

// Rule is a notification filter expression evaluated against the flattened
// event context, e.g. `ref_name == "main"`. Keys holding special characters
// use bracket syntax: `[event.commits[0].id] != ""`.
type Rule struct {
	When string `yaml:"when"`
}

// RuleEngine decides whether an event notifies. An engine with no rules lets
// every event through; otherwise the first rule evaluating true wins.
type RuleEngine struct {
	exprs  []*govaluate.EvaluableExpression
	logger *log.Logger
}

func NewRuleEngine(rules []Rule, logger *log.Logger) (*RuleEngine, error) {
	if logger == nil {
		logger = log.Default()
	}
	exprs := make([]*govaluate.EvaluableExpression, 0, len(rules))
	for _, rule := range rules {
		expr, err := govaluate.NewEvaluableExpression(rule.When)
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", rule.When, err)
		}
		exprs = append(exprs, expr)
	}
	return &RuleEngine{exprs: exprs, logger: logger}, nil
}

// Match reports whether the event should notify.
func (r *RuleEngine) Match(evctx *EventContext) bool {
	if len(r.exprs) == 0 {
		return true
	}

	params := flattenContext(evctx)
	for _, expr := range r.exprs {
		result, err := expr.Evaluate(params)
		if err != nil {
			r.logger.Printf("rule eval failed: %v", err)
			continue
		}
		if ok, _ := result.(bool); ok {
			return true
		}
	}
	return false
}

// flattenContext turns the context record into a single-level parameter map.
// Nested keys join with ".", sequence elements get an index suffix, so a
// commit message is reachable as `event.commits[0].message`.
func flattenContext(evctx *EventContext) map[string]interface{} {
	raw, err := json.Marshal(evctx)
	if err != nil {
		return map[string]interface{}{}
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return map[string]interface{}{}
	}

	out := make(map[string]interface{})
	for key, value := range data {
		flattenInto(out, key, value)
	}
	return out
}

func flattenInto(out map[string]interface{}, path string, value interface{}) {
	switch typed := value.(type) {
	case map[string]interface{}:
		for key, child := range typed {
			flattenInto(out, path+"."+key, child)
		}
	case []interface{}:
		out[path] = typed
		for i, child := range typed {
			flattenInto(out, fmt.Sprintf("%s[%d]", path, i), child)
		}
	default:
		out[path] = value
	}
}
