// Package goals turns free-text goals into structured goals and plan variants.
package goals

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/vsinha/procureplan/pkg/domain/entities"
)

// DefaultServiceTarget is used when the text names no service level
const DefaultServiceTarget = 0.95

const budgetContextChars = 20

var (
	currencyBudget = regexp.MustCompile(`£\s*([0-9][0-9,]*)`)
	labeledBudget  = regexp.MustCompile(`(?i)([0-9][0-9,]*)\s*(?:gbp|pounds)`)
	anyNumber      = regexp.MustCompile(`[0-9][0-9,]*`)
	percentTarget  = regexp.MustCompile(`(\d{1,3})\s*%`)
	decimalTarget  = regexp.MustCompile(`(0\.\d+)`)
	excludePhrase  = regexp.MustCompile(`(?i)(?:exclude|avoid)\s+([A-Z][\w\s&-]+)`)
)

// CategoryVocabulary is the fixed set of recognized spend categories
var CategoryVocabulary = []string{
	"beverages", "cleaning", "food", "it", "maintenance", "office", "supplies",
}

// ParseGoal extracts budget, service target, categories and exclusions from text.
// It never fails: unrecognized parts fall back to a zero budget and a 0.95 target.
func ParseGoal(text string) entities.Goal {
	goal := entities.Goal{
		MonthlyBudgetGBP:   ParseBudget(text),
		ServiceLevelTarget: ParseServiceTarget(text),
		Categories:         ParseCategories(text),
		Excludes:           ParseExcludes(text),
	}
	goal.Normalize()
	return goal
}

// ParseBudget finds a £ amount, then an amount labeled gbp or pounds, then any number
// within 20 characters of "budget" or "month"
func ParseBudget(text string) float64 {
	if m := currencyBudget.FindStringSubmatch(text); m != nil {
		return parseAmount(m[1])
	}
	if m := labeledBudget.FindStringSubmatch(text); m != nil {
		return parseAmount(m[1])
	}
	for _, loc := range anyNumber.FindAllStringIndex(text, -1) {
		start := loc[0]
		window := strings.ToLower(text[max(0, start-budgetContextChars):min(len(text), start+budgetContextChars)])
		if strings.Contains(window, "budget") || strings.Contains(window, "month") {
			return parseAmount(text[loc[0]:loc[1]])
		}
	}
	return 0
}

// ParseServiceTarget reads a percentage, then a 0.x decimal, clamped to [0,1]
func ParseServiceTarget(text string) float64 {
	if m := percentTarget.FindStringSubmatch(text); m != nil {
		pct, err := strconv.Atoi(m[1])
		if err == nil {
			return clamp01(float64(pct) / 100.0)
		}
	}
	if m := decimalTarget.FindStringSubmatch(text); m != nil {
		value, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return clamp01(value)
		}
	}
	return DefaultServiceTarget
}

// ParseCategories returns the vocabulary words contained in text, sorted
func ParseCategories(text string) []string {
	lower := strings.ToLower(text)
	found := []string{}
	for _, category := range CategoryVocabulary {
		if strings.Contains(lower, category) {
			found = append(found, category)
		}
	}
	sort.Strings(found)
	return found
}

// ParseExcludes returns the names following "exclude" or "avoid"
func ParseExcludes(text string) []string {
	excludes := []string{}
	for _, m := range excludePhrase.FindAllStringSubmatch(text, -1) {
		excludes = append(excludes, strings.TrimSpace(m[1]))
	}
	return excludes
}

func parseAmount(s string) float64 {
	value, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return value
}

func clamp01(v float64) float64 {
	return min(1.0, max(0.0, v))
}
