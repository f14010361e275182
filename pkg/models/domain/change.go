package domain

import "encoding/json"

type ChangeAction string

const (
	ActionModify ChangeAction = "Modify"
	ActionCreate ChangeAction = "Create"
	ActionRemove ChangeAction = "Remove"
	ActionOther  ChangeAction = "Other"
)

// ResourceChange is one atomic edit proposed by the control plane.
type ResourceChange struct {
	LogicalID    string
	Action       ChangeAction
	ResourceType string // AWS::S3::Bucket
	PhysicalID   string // empty until the resource exists
	Detail       json.RawMessage
}

// ResourceGroup aggregates every change sharing a logical id.
type ResourceGroup struct {
	LogicalID    string
	ResourceType string
	PhysicalID   string
	Changes      []ResourceChange
	Findings     []Finding
}

// ResourceGroups is a logical id -> group mapping that remembers first-seen order.
type ResourceGroups struct {
	order  []string
	groups map[string]*ResourceGroup
}

func NewResourceGroups() *ResourceGroups {
	return &ResourceGroups{groups: make(map[string]*ResourceGroup)}
}

// Add records a change, creating the group on first sight. The physical id is
// taken from the first change that carries one and never overwritten.
func (g *ResourceGroups) Add(change ResourceChange) *ResourceGroup {
	group, ok := g.groups[change.LogicalID]
	if !ok {
		group = &ResourceGroup{
			LogicalID:    change.LogicalID,
			ResourceType: change.ResourceType,
		}
		g.groups[change.LogicalID] = group
		g.order = append(g.order, change.LogicalID)
	}
	if group.PhysicalID == "" {
		group.PhysicalID = change.PhysicalID
	}
	group.Changes = append(group.Changes, change)
	return group
}

func (g *ResourceGroups) Get(logicalID string) (*ResourceGroup, bool) {
	if g == nil {
		return nil, false
	}
	group, ok := g.groups[logicalID]
	return group, ok
}

func (g *ResourceGroups) Len() int {
	if g == nil {
		return 0
	}
	return len(g.order)
}

// Keys returns logical ids in first-seen order.
func (g *ResourceGroups) Keys() []string {
	if g == nil {
		return nil
	}
	return append([]string(nil), g.order...)
}

// Groups returns the groups in first-seen order.
func (g *ResourceGroups) Groups() []*ResourceGroup {
	if g == nil {
		return nil
	}
	out := make([]*ResourceGroup, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.groups[id])
	}
	return out
}

// FindByPhysicalID returns the first group whose physical id matches.
func (g *ResourceGroups) FindByPhysicalID(physicalID string) (*ResourceGroup, bool) {
	for _, group := range g.Groups() {
		if group.PhysicalID == physicalID {
			return group, true
		}
	}
	return nil, false
}
