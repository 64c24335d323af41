package form

// Kind identifies the widget variant.
type Kind string

const (
	KindText         Kind = "TEXT"
	KindSingleSelect Kind = "SINGLE_SELECT"
	KindMultiSelect  Kind = "MULTI_SELECT"
	KindSignature    Kind = "SIGNATURE"
)

// Sentinel option values. They describe control state, never user data.
const (
	OptionOther   = "_other"
	OptionDefault = "_default"
)

// AllKinds returns the supported widget kinds in declaration order.
func AllKinds() []Kind {
	return []Kind{
		KindText,
		KindSingleSelect,
		KindMultiSelect,
		KindSignature,
	}
}

// IsValid reports whether k is one of the supported kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindText,
		KindSingleSelect,
		KindMultiSelect,
		KindSignature:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}

// IsSentinel reports whether value is a reserved option value.
func IsSentinel(value string) bool {
	return value == OptionOther || value == OptionDefault
}
