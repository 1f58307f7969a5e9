package api

import (
	"net/http"

	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/contextkeys"
	"github.com/wardenhq/warden/pkg/httputil"
)

// ProjectResponse is a guarded project read
type ProjectResponse struct {
	ID             string `json:"id"`
	TeamID         string `json:"team_id"`
	OrganizationID string `json:"organization_id"`
	IsActive       bool   `json:"is_active"`
	// GrantedRole is the role that authorized this read
	GrantedRole string `json:"granted_role"`
}

// getProject returns project metadata. The guard has already verified
// read access, so a missing row here is a race with a concurrent delete.
func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := httputil.ParsePathStringOrError(w, r, "project_id")
	if !ok {
		return
	}

	project, err := s.store.GetProject(r.Context(), projectID)
	if err != nil {
		s.logger.WithError(err).WithField("project_id", projectID).Error("project fetch failed")
		httputil.WriteInternalError(w)
		return
	}
	if project == nil {
		httputil.WriteNotFound(w, authz.ReasonProjectNotFound.Message())
		return
	}

	httputil.WriteSuccess(w, ProjectResponse{
		ID:             project.ID,
		TeamID:         project.TeamID,
		OrganizationID: project.OrganizationID,
		IsActive:       project.IsActive,
		GrantedRole:    contextkeys.GetGrantedRole(r.Context()),
	})
}
