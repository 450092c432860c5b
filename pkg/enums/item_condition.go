package enums

import "fmt"

// ItemCondition is the recorded physical state of a received line.
type ItemCondition string

const (
	ItemConditionGood      ItemCondition = "GOOD"
	ItemConditionDamaged   ItemCondition = "DAMAGED"
	ItemConditionDefective ItemCondition = "DEFECTIVE"
)

var validItemConditions = []ItemCondition{
	ItemConditionGood,
	ItemConditionDamaged,
	ItemConditionDefective,
}

// String implements fmt.Stringer.
func (i ItemCondition) String() string {
	return string(i)
}

// IsValid reports whether the value is a known ItemCondition.
func (i ItemCondition) IsValid() bool {
	for _, candidate := range validItemConditions {
		if candidate == i {
			return true
		}
	}
	return false
}

// IsDiscrepant reports whether a line in this condition forces the
// whole receipt into DISCREPANCY.
func (i ItemCondition) IsDiscrepant() bool {
	return i == ItemConditionDamaged || i == ItemConditionDefective
}

// ParseItemCondition converts raw input into an ItemCondition.
func ParseItemCondition(value string) (ItemCondition, error) {
	for _, candidate := range validItemConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item condition %q", value)
}
