// Package serial formats and parses the human-readable control numbers
// stamped on issued documents. DTT numbers are year-scoped
// ("DTT-2025-0013"), RIS numbers are month-scoped ("2025-03-0142").
package serial

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/model"
)

var (
	dttPattern = regexp.MustCompile(`^([A-Z]{2,4})-(\d{4})-(\d{4})$`)
	risPattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{4})$`)
)

// Number is a parsed control number. Scope identifies the sequence counter
// the ordinal was drawn from.
type Number struct {
	Kind    model.DocumentKind
	Scope   string
	Ordinal int64
	Value   string
}

// ScopeFor returns the counter scope a number minted at t belongs to.
func ScopeFor(kind model.DocumentKind, t time.Time) string {
	if kind == model.KindRIS {
		return t.Format("2006-01")
	}
	return t.Format("2006")
}

// Format renders the canonical control number for an ordinal within a scope.
// The prefix is only used for year-scoped kinds; RIS numbers carry none.
func Format(kind model.DocumentKind, prefix, scope string, ordinal int64) string {
	if kind == model.KindRIS {
		return fmt.Sprintf("%s-%04d", scope, ordinal)
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, scope, ordinal)
}

// Parse validates a manually entered control number and extracts its scope
// and ordinal. The prefix argument is the configured prefix for year-scoped
// kinds and is ignored for RIS.
func Parse(kind model.DocumentKind, prefix, raw string) (Number, error) {
	switch kind {
	case model.KindRIS:
		return parseRIS(raw)
	case model.KindDTT:
		return parseScoped(kind, prefix, raw)
	default:
		return Number{}, fmt.Errorf("unsupported document kind %q", kind)
	}
}

func parseRIS(raw string) (Number, error) {
	m := risPattern.FindStringSubmatch(raw)
	if m == nil {
		return Number{}, fmt.Errorf("control number %q does not match YYYY-MM-NNNN", raw)
	}
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return Number{}, fmt.Errorf("control number %q has month %02d out of range", raw, month)
	}
	ordinal, _ := strconv.ParseInt(m[3], 10, 64)
	if ordinal == 0 {
		return Number{}, fmt.Errorf("control number %q has a zero ordinal", raw)
	}
	return Number{
		Kind:    model.KindRIS,
		Scope:   m[1] + "-" + m[2],
		Ordinal: ordinal,
		Value:   raw,
	}, nil
}

func parseScoped(kind model.DocumentKind, prefix, raw string) (Number, error) {
	m := dttPattern.FindStringSubmatch(raw)
	if m == nil {
		return Number{}, fmt.Errorf("control number %q does not match PREFIX-YYYY-NNNN", raw)
	}
	if m[1] != prefix {
		return Number{}, fmt.Errorf("control number %q has prefix %q, want %q", raw, m[1], prefix)
	}
	ordinal, _ := strconv.ParseInt(m[3], 10, 64)
	if ordinal == 0 {
		return Number{}, fmt.Errorf("control number %q has a zero ordinal", raw)
	}
	return Number{
		Kind:    kind,
		Scope:   m[2],
		Ordinal: ordinal,
		Value:   raw,
	}, nil
}
