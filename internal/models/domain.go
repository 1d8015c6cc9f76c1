// Package models defines the core data structures for Lattia.
//
// It includes the closed interview domain vocabulary, field specifications,
// session state, turn decisions, and merge reports, which are shared across modules.
package models

// Domain identifies one of the fixed life-area categories used to bucket
// intake fields and track pacing. The vocabulary is closed: adding a domain
// is a build-time change, never a runtime one.
type Domain string

const (
	DomainBasicInfo           Domain = "basic_info"
	DomainLifestyle           Domain = "lifestyle"
	DomainPhysicalActivity    Domain = "physical_activity"
	DomainSleep               Domain = "sleep"
	DomainMentalHealth        Domain = "mental_health"
	DomainNutrition           Domain = "nutrition"
	DomainSocialRelations     Domain = "social_relations"
	DomainFamilyHistory       Domain = "family_history"
	DomainMedicalHistory      Domain = "medical_history"
	DomainSubstanceUse        Domain = "substance_use"
	DomainPersonalHygiene     Domain = "personal_hygiene"
	DomainCurrentHealthStatus Domain = "current_health_status"
)

// AllDomains lists the closed domain vocabulary in canonical order.
// Iteration over domain stats and clock rendering follow this order.
var AllDomains = []Domain{
	DomainBasicInfo,
	DomainLifestyle,
	DomainPhysicalActivity,
	DomainSleep,
	DomainMentalHealth,
	DomainNutrition,
	DomainSocialRelations,
	DomainFamilyHistory,
	DomainMedicalHistory,
	DomainSubstanceUse,
	DomainPersonalHygiene,
	DomainCurrentHealthStatus,
}

// IsValidDomain checks if the given domain is part of the closed vocabulary.
func IsValidDomain(d Domain) bool {
	switch d {
	case DomainBasicInfo, DomainLifestyle, DomainPhysicalActivity, DomainSleep,
		DomainMentalHealth, DomainNutrition, DomainSocialRelations, DomainFamilyHistory,
		DomainMedicalHistory, DomainSubstanceUse, DomainPersonalHygiene, DomainCurrentHealthStatus:
		return true
	default:
		return false
	}
}

// ValueType controls how a field's value is validated. Storage is always
// canonical text regardless of value type.
type ValueType string

const (
	// ValueTypeFreeText accepts any text value.
	ValueTypeFreeText ValueType = "free_text"
	// ValueTypeBoolean accepts the literal pair "yes"/"no".
	ValueTypeBoolean ValueType = "boolean"
	// ValueTypeEnumerated accepts exactly one of the spec's options, verbatim.
	ValueTypeEnumerated ValueType = "enumerated"
	// ValueTypeNumber accepts decimal numbers.
	ValueTypeNumber ValueType = "number"
	// ValueTypeDate accepts dates in YYYY-MM-DD form.
	ValueTypeDate ValueType = "date"
)

// IsValidValueType checks if the given value type is supported.
func IsValidValueType(vt ValueType) bool {
	switch vt {
	case ValueTypeFreeText, ValueTypeBoolean, ValueTypeEnumerated, ValueTypeNumber, ValueTypeDate:
		return true
	default:
		return false
	}
}

// Boolean value literals.
const (
	BooleanYes = "yes"
	BooleanNo  = "no"
)

// Special answer tokens that are valid for any value type. Used when the
// participant refuses or cannot provide an answer.
const (
	ValueTokenPreferNotToSay = "prefer_not_to_say"
	ValueTokenNotSure        = "not_sure"
)

// IsSpecialValueToken reports whether v is one of the non-conforming answer
// tokens accepted for every value type.
func IsSpecialValueToken(v string) bool {
	return v == ValueTokenPreferNotToSay || v == ValueTokenNotSure
}

// DateValueLayout is the canonical format for date-typed values.
const DateValueLayout = "2006-01-02"
