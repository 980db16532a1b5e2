package rule

import (
	"fmt"
	"slices"
)

// RuleSet is an ordered sequence of [Rule]s.
type RuleSet []Rule

// Clone returns a deep copy of rs.
func (rs RuleSet) Clone() RuleSet {
	if rs == nil {
		return nil
	}

	out := make(RuleSet, len(rs))
	for i, r := range rs {
		out[i] = r.Clone()
	}

	return out
}

// Append returns a new [RuleSet] with r added at the end.
func (rs RuleSet) Append(r Rule) RuleSet {
	out := rs.Clone()
	return append(out, r.Clone())
}

// Delete returns a new [RuleSet] without the rule at index i.
func (rs RuleSet) Delete(i int) (RuleSet, error) {
	err := rs.checkIndex(i)
	if err != nil {
		return nil, err
	}

	out := rs.Clone()

	return slices.Delete(out, i, i+1), nil
}

// Replace returns a new [RuleSet] with the rule at index i replaced by r.
func (rs RuleSet) Replace(i int, r Rule) (RuleSet, error) {
	err := rs.checkIndex(i)
	if err != nil {
		return nil, err
	}

	out := rs.Clone()
	out[i] = r.Clone()

	return out, nil
}

// MoveUp returns a new [RuleSet] with the rule at index i swapped with its
// predecessor. Moving the first rule up is a no-op.
func (rs RuleSet) MoveUp(i int) (RuleSet, error) {
	err := rs.checkIndex(i)
	if err != nil {
		return nil, err
	}

	out := rs.Clone()
	if i > 0 {
		out[i-1], out[i] = out[i], out[i-1]
	}

	return out, nil
}

// MoveDown returns a new [RuleSet] with the rule at index i swapped with its
// successor. Moving the last rule down is a no-op.
func (rs RuleSet) MoveDown(i int) (RuleSet, error) {
	err := rs.checkIndex(i)
	if err != nil {
		return nil, err
	}

	out := rs.Clone()
	if i < len(out)-1 {
		out[i+1], out[i] = out[i], out[i+1]
	}

	return out, nil
}

// Normalize returns a copy of rs with every rule normalized.
func (rs RuleSet) Normalize() RuleSet {
	out := make(RuleSet, len(rs))
	for i, r := range rs {
		out[i] = r.Normalize()
	}

	return out
}

func (rs RuleSet) checkIndex(i int) error {
	if i < 0 || i >= len(rs) {
		return fmt.Errorf("%w: %d (have %d rules)", ErrIndexOutOfRange, i, len(rs))
	}

	return nil
}
