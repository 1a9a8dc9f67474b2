package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/snackbar/internal/model"
)

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="  // Exact match
	FilterOpNotEqual  FilterOp = "!=" // Not equal
	FilterOpContains  FilterOp = "~"  // Contains substring
	FilterOpRegex     FilterOp = "~=" // Regex match
	FilterOpGreater   FilterOp = ">"  // Greater than
	FilterOpLess      FilterOp = "<"  // Less than
	FilterOpGreaterEq FilterOp = ">=" // Greater than or equal
	FilterOpLessEq    FilterOp = "<=" // Less than or equal
)

// FilterCondition represents a single filter condition.
type FilterCondition struct {
	Field    string   // Field name: type, message, reason, action, source, closed
	Operator FilterOp // Comparison operator
	Value    string   // Value to compare against

	regex     *regexp.Regexp
	typeRank  int
	closedCut time.Time
}

// FilterExpr represents a compound filter expression.
// Multiple conditions are ANDed together.
type FilterExpr struct {
	Conditions []FilterCondition
}

// FilterOptions specifies criteria for filtering journal entries.
type FilterOptions struct {
	Since  time.Duration     // Only entries closed after now-since (0=all)
	Type   model.Type        // Exact type match ("" = any)
	Reason model.CloseReason // Exact reason match ("" = any)
	Limit  int               // Maximum results (0=unlimited)
	Now    func() time.Time  // Clock override for tests
}

// Filter filters journal entries based on the provided options.
func Filter(entries []model.Entry, opts FilterOptions) []model.Entry {
	now := time.Now()
	if opts.Now != nil {
		now = opts.Now()
	}
	result := make([]model.Entry, 0, len(entries))

	for _, e := range entries {
		if opts.Since > 0 {
			cutoff := now.Add(-opts.Since)
			if time.Unix(e.ClosedAt, 0).Before(cutoff) {
				continue
			}
		}
		if opts.Type != "" && e.Type != opts.Type {
			continue
		}
		if opts.Reason != "" && e.Reason != opts.Reason {
			continue
		}
		result = append(result, e)
	}

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}

	return result
}

// ParseDuration parses a duration string with extended formats.
// Supports: 48h, 7d, 1w, 0 (all time)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if s == "0" || s == "" {
		return 0, nil
	}

	if daysStr, found := strings.CutSuffix(s, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	if weeksStr, found := strings.CutSuffix(s, "w"); found {
		weeks, err := strconv.Atoi(weeksStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}

// ParseReason parses a close reason name.
func ParseReason(s string) (model.CloseReason, error) {
	r := model.CloseReason(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range model.Reasons {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid close reason: %s (use expired, dismissed, closed, or action)", s)
}

// ParseFilter parses a filter expression string into a FilterExpr.
// Format: "field=value,field2~value2,field3>value3"
// Multiple conditions are comma-separated and ANDed together.
//
// Supported fields: type, message, reason, action, source, closed
// Supported operators: = (equal), != (not equal), ~ (contains), ~= (regex), >, <, >=, <=
//
// Examples:
//   - "type=ERROR" - errors only
//   - "message~disk" - message contains "disk"
//   - "type>=warn" - WARN and ERROR
//   - "reason=action,action~undo" - toasts closed through an Undo action
//   - "closed>1h" - closed within the last hour
func ParseFilter(expr string) (*FilterExpr, error) {
	if expr == "" {
		return &FilterExpr{}, nil
	}

	filter := &FilterExpr{
		Conditions: make([]FilterCondition, 0),
	}

	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		cond, err := parseCondition(part)
		if err != nil {
			return nil, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}

	return filter, nil
}

func parseCondition(s string) (FilterCondition, error) {
	// Longest operators first so "!=" is not read as "=".
	operators := []FilterOp{
		FilterOpNotEqual,
		FilterOpGreaterEq,
		FilterOpLessEq,
		FilterOpRegex,
		FilterOpEqual,
		FilterOpContains,
		FilterOpGreater,
		FilterOpLess,
	}

	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx > 0 {
			cond := FilterCondition{
				Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
				Operator: op,
				Value:    strings.TrimSpace(s[idx+len(op):]),
			}
			if err := cond.init(); err != nil {
				return FilterCondition{}, err
			}
			return cond, nil
		}
	}

	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

// init pre-parses and validates the condition value.
func (c *FilterCondition) init() error {
	switch c.Field {
	case "type", "severity":
		c.Field = "type"
		t, err := model.ParseType(c.Value)
		if err != nil {
			return err
		}
		c.Value = string(t)
		c.typeRank = typeRank[t]
	case "message", "msg", "body":
		c.Field = "message"
	case "reason":
		if c.Operator == FilterOpEqual || c.Operator == FilterOpNotEqual {
			r, err := ParseReason(c.Value)
			if err != nil {
				return err
			}
			c.Value = string(r)
		}
	case "action", "caption":
		c.Field = "action"
	case "source", "src":
		c.Field = "source"
	case "closed", "time", "ts":
		c.Field = "closed"
		dur, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid closed value: %w", err)
		}
		c.closedCut = time.Now().Add(-dur)
	default:
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}

	return nil
}

// Match tests if an entry matches the filter expression.
// All conditions must match (AND logic).
func (f *FilterExpr) Match(e model.Entry) bool {
	for _, cond := range f.Conditions {
		if !cond.Match(e) {
			return false
		}
	}
	return true
}

// Match tests if an entry matches this single condition.
func (c *FilterCondition) Match(e model.Entry) bool {
	switch c.Field {
	case "type":
		if c.Operator == FilterOpEqual || c.Operator == FilterOpNotEqual {
			return c.matchString(string(e.Type))
		}
		return c.matchInt(typeRank[e.Type], c.typeRank)
	case "message":
		return c.matchString(e.Message)
	case "reason":
		return c.matchString(string(e.Reason))
	case "action":
		return c.matchString(e.Action)
	case "source":
		return c.matchString(e.Source)
	case "closed":
		return c.matchTimestamp(time.Unix(e.ClosedAt, 0))
	default:
		return false
	}
}

func (c *FilterCondition) matchString(fieldValue string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.Value
	case FilterOpNotEqual:
		return fieldValue != c.Value
	case FilterOpContains:
		return strings.Contains(strings.ToLower(fieldValue), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(fieldValue)
	default:
		return false
	}
}

func (c *FilterCondition) matchInt(fieldValue, condValue int) bool {
	switch c.Operator {
	case FilterOpGreater:
		return fieldValue > condValue
	case FilterOpLess:
		return fieldValue < condValue
	case FilterOpGreaterEq:
		return fieldValue >= condValue
	case FilterOpLessEq:
		return fieldValue <= condValue
	default:
		return false
	}
}

// matchTimestamp compares against now-duration: "closed>1h" means closed
// less than an hour ago.
func (c *FilterCondition) matchTimestamp(fieldValue time.Time) bool {
	switch c.Operator {
	case FilterOpGreater:
		return fieldValue.After(c.closedCut)
	case FilterOpLess:
		return fieldValue.Before(c.closedCut)
	case FilterOpGreaterEq:
		return !fieldValue.Before(c.closedCut)
	case FilterOpLessEq:
		return !fieldValue.After(c.closedCut)
	default:
		return false
	}
}

// FilterWithExpr filters entries using a filter expression.
func FilterWithExpr(entries []model.Entry, expr *FilterExpr) []model.Entry {
	if expr == nil || len(expr.Conditions) == 0 {
		return entries
	}

	result := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if expr.Match(e) {
			result = append(result, e)
		}
	}
	return result
}
