package eligibility

import (
	"fmt"
	"strings"

	"backwork/atlas/pkg/schema"
)

// slot is the unit the aggregator reduces over: either a standalone
// criterion or a resolved alternative group. Group slots are always
// required; individual member required flags do not apply at slot level.
type slot struct {
	id       string
	name     string
	required bool
	status   CriterionStatus

	// result is the representative criterion result whose evidence and
	// explanation speak for the slot (for groups, the member that
	// determined the effective status).
	result *CriterionResult
}

// buildSlots collapses the per-criterion results into aggregation slots
// in bundle declaration order: standalone criteria map one-to-one, and
// each alternative group contributes a single slot at the position of
// its first member.
func buildSlots(bundle *schema.PolicyBundle, byID map[string]*CriterionResult) []slot {
	var slots []slot
	seenGroups := make(map[string]bool)

	for _, def := range bundle.Criteria {
		if !def.InGroup() {
			r := byID[def.ID]
			slots = append(slots, slot{
				id:       def.ID,
				name:     def.Name,
				required: def.Required,
				status:   r.Status,
				result:   r,
			})
			continue
		}

		if seenGroups[def.AlternativeGroup] {
			continue
		}
		seenGroups[def.AlternativeGroup] = true
		slots = append(slots, resolveGroup(bundle, def.AlternativeGroup, byID))
	}

	return slots
}

// resolveGroup combines the results of all members of an alternative
// group into one effective slot. Status precedence:
//
//	met > partial > insufficient_evidence > not_met
//
// so the group is met if any member is met, and not met only when every
// member is not met. The representative result is the first member (in
// declaration order) carrying the effective status.
func resolveGroup(bundle *schema.PolicyBundle, group string, byID map[string]*CriterionResult) slot {
	members := bundle.GroupMembers(group)

	effective := StatusNotMet
	for _, m := range members {
		switch byID[m.ID].Status {
		case StatusMet:
			effective = StatusMet
		case StatusPartial:
			if effective != StatusMet {
				effective = StatusPartial
			}
		case StatusInsufficientEvidence:
			if effective != StatusMet && effective != StatusPartial {
				effective = StatusInsufficientEvidence
			}
		}
	}

	var representative *CriterionResult
	for _, m := range members {
		if byID[m.ID].Status == effective {
			representative = byID[m.ID]
			break
		}
	}

	return slot{
		id:       group,
		name:     groupName(members),
		required: true, // groups aggregate to a single required slot
		status:   effective,
		result:   representative,
	}
}

// groupName renders an alternative group for gaps and summaries as
// "member-a OR member-b".
func groupName(members []*schema.CriterionDefinition) string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return strings.Join(names, " OR ")
}

// gap phrases the slot's deficiency for the gap list, preferring the
// recommendation over the raw explanation.
func (s slot) gap() string {
	detail := s.result.Recommendation
	if detail == "" {
		detail = s.result.Explanation
	}
	return fmt.Sprintf("%s: %s", s.name, detail)
}
