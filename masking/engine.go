// masking/engine.go
package masking

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	logger "github.com/clarita-9850/CMIPS-APPLICATION-sub003/logging"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/model"
)

const (
	maskChar = "*"

	// anonymizedPlaceholder replaces values under an ANONYMIZE rule. It is
	// independent of the original value.
	anonymizedPlaceholder = "RESTRICTED"

	// defaultKeepLast applies when a PARTIAL_MASK rule carries no pattern.
	defaultKeepLast = 4
)

// Engine applies a masking rule set to raw records. It is stateless; every
// field is evaluated independently per record, so applying the same rule set
// to the same records always yields identical output.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Apply transforms records under the rule set and returns the masked records
// together with the visible-fields manifest: exactly the field names present
// in at least one output record, plus the record-independent aggregate
// fields, in sorted order.
//
// Resolution per field: an explicit enabled rule wins; otherwise fields in
// the selected set pass through and everything else is hidden (fail-closed
// default visibility). A rule that cannot be applied to its value fails that
// field closed to HIDDEN without aborting the record.
func (e *Engine) Apply(records []model.RawRecord, ruleSet *model.MaskingRuleSet) ([]model.MaskedRecord, []string) {
	masked := make([]model.MaskedRecord, 0, len(records))
	visible := make(map[string]struct{})
	aggregates := make(map[string]struct{})

	for _, record := range records {
		out := make(model.MaskedRecord, len(record))
		for field, value := range record {
			rule, ok := ruleSet.Rule(field)
			if !ok {
				if ruleSet.FieldSelected(field) {
					out[field] = value
					visible[field] = struct{}{}
				}
				continue
			}

			switch rule.MaskingType {
			case model.MaskNone:
				out[field] = value
				visible[field] = struct{}{}
			case model.MaskHidden:
				// Omitted entirely so absence does not leak non-nullness.
			case model.MaskAggregate:
				// Suppressed per record; surfaced only as a declared
				// aggregate column in the manifest.
				aggregates[field] = struct{}{}
			case model.MaskPartial:
				if v, err := partialMask(value, rule.Pattern); err == nil {
					out[field] = v
					visible[field] = struct{}{}
				} else {
					e.failField(field, rule, err)
				}
			case model.MaskHash:
				if v, err := hashMask(value); err == nil {
					out[field] = v
					visible[field] = struct{}{}
				} else {
					e.failField(field, rule, err)
				}
			case model.MaskAnonymize:
				out[field] = anonymizedPlaceholder
				visible[field] = struct{}{}
			default:
				e.failField(field, rule, fmt.Errorf("unknown masking type %q", rule.MaskingType))
			}
		}
		masked = append(masked, out)
	}

	manifest := make([]string, 0, len(visible)+len(aggregates))
	for field := range visible {
		manifest = append(manifest, field)
	}
	for field := range aggregates {
		if _, dup := visible[field]; !dup {
			manifest = append(manifest, field)
		}
	}
	sort.Strings(manifest)

	return masked, manifest
}

// failField contains a per-field masking failure: the field is dropped from
// the output record (fail closed to HIDDEN) and the failure is logged.
func (e *Engine) failField(field string, rule model.MaskingRule, err error) {
	logger.Warn("Masking rule could not be applied, hiding field",
		zap.String("field", field),
		zap.String("maskingType", string(rule.MaskingType)),
		zap.Error(err))
}

// partialMask keeps the last N characters of a string value and replaces the
// rest with the mask character. The pattern is "last<N>", e.g. "last4";
// absent patterns keep the default. Non-string values are not maskable.
func partialMask(value interface{}, pattern string) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("partial mask requires a string value, got %T", value)
	}

	keep, err := parseKeepLast(pattern)
	if err != nil {
		return "", err
	}

	runes := []rune(s)
	if len(runes) <= keep {
		return strings.Repeat(maskChar, len(runes)), nil
	}
	return strings.Repeat(maskChar, len(runes)-keep) + string(runes[len(runes)-keep:]), nil
}

func parseKeepLast(pattern string) (int, error) {
	if pattern == "" {
		return defaultKeepLast, nil
	}
	raw, ok := strings.CutPrefix(strings.ToLower(strings.TrimSpace(pattern)), "last")
	if !ok {
		return 0, fmt.Errorf("unsupported partial mask pattern %q", pattern)
	}
	keep, err := strconv.Atoi(raw)
	if err != nil || keep < 0 {
		return 0, fmt.Errorf("unsupported partial mask pattern %q", pattern)
	}
	return keep, nil
}

// hashMask replaces a value with a stable one-way digest so equal inputs
// mask identically, enabling correlation without disclosure.
func hashMask(value interface{}) (string, error) {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case fmt.Stringer:
		s = v.String()
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case bool:
		s = strconv.FormatBool(v)
	default:
		return "", fmt.Errorf("hash mask cannot digest %T", value)
	}

	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:16], nil
}
