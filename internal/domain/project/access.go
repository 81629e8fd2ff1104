package project

// Capabilities is the resolved relationship between a principal and a
// project. Every use case checks one of the predicates below instead of
// combining membership flags itself.
type Capabilities struct {
	PrincipalID     string
	WorkspaceMember bool
	WorkspaceAdmin  bool
	ProjectMember   bool
	ProjectLead     bool
}

// CanView allows reads of project-scoped data
func (c Capabilities) CanView() bool {
	return c.WorkspaceMember || c.ProjectMember
}

// CanContribute allows creating requirements, meetings and task links
func (c Capabilities) CanContribute() bool {
	return c.WorkspaceAdmin || c.ProjectMember || c.ProjectLead
}

// CanEdit allows changing a record owned by ownerID
func (c Capabilities) CanEdit(ownerID string) bool {
	return c.WorkspaceAdmin || c.ProjectLead || (ownerID != "" && ownerID == c.PrincipalID)
}

// CanDelete allows hard-deleting project records
func (c Capabilities) CanDelete() bool {
	return c.WorkspaceAdmin || c.ProjectLead
}

// CanManageStakeholders allows stakeholder create/update/delete
func (c Capabilities) CanManageStakeholders() bool {
	return c.WorkspaceAdmin || c.ProjectLead
}
