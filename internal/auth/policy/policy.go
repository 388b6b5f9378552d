// Package policy maps request paths to access requirements.
//
// A table is written as semicolon separated rules of the form pattern=requirement,
// for example "/=authenticated;/admin/**=ADMIN;/reports/*=ADMIN|EDITOR".
// Patterns are globs with "/" as separator. Requirement is "public", "authenticated"
// or a "|" separated list of roles. The first matching rule wins and unmatched paths are public.
package policy

import (
	"fmt"
	"strings"

	"github.com/LucianoSainz/w5d1/internal/auth/service"
	"github.com/LucianoSainz/w5d1/internal/models"
	"github.com/gobwas/glob"
)

const (
	keywordPublic        = "public"
	keywordAuthenticated = "authenticated"
)

// Rule binds a path pattern to a requirement
type Rule struct {
	Pattern     string
	Requirement service.Requirement
	matcher     glob.Glob
}

// Table is an ordered list of rules
type Table struct {
	rules []Rule
}

// Parse builds a table from its textual form.
// Unknown roles and malformed patterns are rejected.
func Parse(raw string) (*Table, error) {
	table := &Table{}

	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		pattern, requirementStr, ok := strings.Cut(entry, "=")
		pattern = strings.TrimSpace(pattern)
		if !ok || pattern == "" {
			return nil, fmt.Errorf("invalid policy rule %q: expected pattern=requirement", entry)
		}

		requirement, err := parseRequirement(requirementStr)
		if err != nil {
			return nil, fmt.Errorf("invalid policy rule %q: %w", entry, err)
		}

		if err := table.Add(pattern, requirement); err != nil {
			return nil, err
		}
	}

	return table, nil
}

// Add appends a rule to the table
func (t *Table) Add(pattern string, requirement service.Requirement) error {
	matcher, err := glob.Compile(pattern, '/')
	if err != nil {
		return fmt.Errorf("invalid policy pattern %q: %w", pattern, err)
	}

	t.rules = append(t.rules, Rule{
		Pattern:     pattern,
		Requirement: requirement,
		matcher:     matcher,
	})
	return nil
}

// Match returns the requirement of the first rule matching path
func (t *Table) Match(path string) service.Requirement {
	for _, rule := range t.rules {
		if rule.matcher.Match(path) {
			return rule.Requirement
		}
	}
	return service.Public()
}

// Rules returns a copy of the rules in evaluation order
func (t *Table) Rules() []Rule {
	rules := make([]Rule, len(t.rules))
	copy(rules, t.rules)
	return rules
}

func parseRequirement(raw string) (service.Requirement, error) {
	raw = strings.TrimSpace(raw)

	switch strings.ToLower(raw) {
	case keywordPublic:
		return service.Public(), nil
	case keywordAuthenticated:
		return service.Authenticated(), nil
	case "":
		return service.Requirement{}, fmt.Errorf("empty requirement")
	}

	var roles []models.Role
	for _, name := range strings.Split(raw, "|") {
		if strings.TrimSpace(name) == "" {
			return service.Requirement{}, fmt.Errorf("empty role name")
		}
		role, err := models.ParseRole(name)
		if err != nil {
			return service.Requirement{}, err
		}
		roles = append(roles, role)
	}

	return service.Roles(roles...), nil
}
