package core

import "fmt"

// Section is one of the six fixed clinical history categories. The zero
// value is ChiefComplaint; sections are always visited in declaration order.
type Section int

const (
	SectionChiefComplaint Section = iota
	SectionHPI
	SectionPMH
	SectionMedications
	SectionSocialHistory
	SectionFamilyHistory
)

// SectionOrder is the fixed interview order. The controller never visits
// sections out of this order.
var SectionOrder = []Section{
	SectionChiefComplaint,
	SectionHPI,
	SectionPMH,
	SectionMedications,
	SectionSocialHistory,
	SectionFamilyHistory,
}

var sectionKeys = map[Section]string{
	SectionChiefComplaint: "chiefComplaint",
	SectionHPI:            "HPI",
	SectionPMH:            "PMH",
	SectionMedications:    "Medications",
	SectionSocialHistory:  "SH",
	SectionFamilyHistory:  "FH",
}

var sectionLabels = map[Section]string{
	SectionChiefComplaint: "Chief Complaint",
	SectionHPI:            "History of Present Illness",
	SectionPMH:            "Past Medical History",
	SectionMedications:    "Medications",
	SectionSocialHistory:  "Social History",
	SectionFamilyHistory:  "Family History",
}

// Key returns the wire/storage key for the section, as used in the curated
// question data and the extracted history record.
func (s Section) Key() string {
	if k, ok := sectionKeys[s]; ok {
		return k
	}
	return fmt.Sprintf("section(%d)", int(s))
}

// Label returns the human-readable section name.
func (s Section) Label() string {
	if l, ok := sectionLabels[s]; ok {
		return l
	}
	return s.Key()
}

func (s Section) String() string { return s.Key() }

// ParseSection maps a wire key back to its Section.
func ParseSection(key string) (Section, bool) {
	for sec, k := range sectionKeys {
		if k == key {
			return sec, true
		}
	}
	return 0, false
}

// NextSection returns the section following s in the fixed order, or false
// when s is the last one.
func NextSection(s Section) (Section, bool) {
	for i, sec := range SectionOrder {
		if sec == s && i+1 < len(SectionOrder) {
			return SectionOrder[i+1], true
		}
	}
	return 0, false
}
