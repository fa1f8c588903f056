package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRule is returned when a column rule fails validation at the save
// boundary.
var ErrInvalidRule = errors.New("invalid column rule")

type RuleType string

const (
	RuleDirect RuleType = "DIRECT"
	RuleNVL    RuleType = "NVL"
	RuleCustom RuleType = "CUSTOM"
	RuleConcat RuleType = "CONCAT"
)

// RuleTypes lists every rule kind the engine accepts.
var RuleTypes = []RuleType{RuleDirect, RuleNVL, RuleCustom, RuleConcat}

// ColumnRule is one column-level transformation. CustomExpression keeps the
// "custom_sql" key used by existing payloads and templates.
type ColumnRule struct {
	SourceColumn     string   `json:"source_column" validate:"required_unless=RuleType CUSTOM"`
	TargetColumn     string   `json:"target_column" validate:"required"`
	RuleType         RuleType `json:"rule_type" validate:"required,oneof=DIRECT NVL CUSTOM CONCAT"`
	CustomExpression string   `json:"custom_sql,omitempty" validate:"required_if=RuleType CUSTOM"`
}

var ruleValidator = validator.New()

// Normalize trims the rule fields and upper-cases the rule type.
func (r *ColumnRule) Normalize() {
	r.SourceColumn = strings.TrimSpace(r.SourceColumn)
	r.TargetColumn = strings.TrimSpace(r.TargetColumn)
	r.RuleType = RuleType(strings.ToUpper(strings.TrimSpace(string(r.RuleType))))
	r.CustomExpression = strings.TrimSpace(r.CustomExpression)
}

func (r ColumnRule) Validate() error {
	if err := ruleValidator.Struct(r); err != nil {
		return fmt.Errorf("%w: %s -> %s (%s): %v", ErrInvalidRule, r.SourceColumn, r.TargetColumn, r.RuleType, err)
	}
	return nil
}

// ValidateRules normalizes every rule in place and returns the first failure,
// annotated with the rule position.
func ValidateRules(rules []ColumnRule) error {
	for i := range rules {
		rules[i].Normalize()
		if err := rules[i].Validate(); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

// Mapping associates one source descriptor with one target descriptor.
// SourceTableID and TargetTableID always point at existing descriptors.
type Mapping struct {
	ID            int64        `json:"id"`
	SourceTableID int64        `json:"source_table_id"`
	TargetTableID int64        `json:"target_table_id"`
	Rules         []ColumnRule `json:"mappings"`
	CreatedAt     time.Time    `json:"created_at"`
}

func (m *Mapping) Prepare() {
	if m.Rules == nil {
		m.Rules = []ColumnRule{}
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
}

// MappingSummary is a mapping joined with its descriptor names for listing.
type MappingSummary struct {
	ID              int64     `json:"id"`
	SourceTableID   int64     `json:"source_table_id"`
	SourceTableName string    `json:"source_table"`
	TargetTableID   int64     `json:"target_table_id"`
	TargetTableName string    `json:"target_table"`
	RuleCount       int       `json:"rule_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// MappingDetail carries live column lists next to the stored mapping. Source
// columns come from fresh introspection and may no longer match the rules.
// MissingTargets lists rule targets absent from a populated target descriptor.
type MappingDetail struct {
	Mapping
	SourceTableName string             `json:"source_table"`
	TargetTableName string             `json:"target_table"`
	SourceColumns   []ColumnDescriptor `json:"source_columns"`
	TargetColumns   []ColumnDescriptor `json:"target_columns"`
	SourceIsStub    bool               `json:"source_is_stub"`
	TargetIsStub    bool               `json:"target_is_stub"`
	MissingTargets  []string           `json:"missing_target_columns,omitempty"`
}
