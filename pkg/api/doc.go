// Package api exposes the authorization service over HTTP.
//
// All routes live under /v1 and require an authenticated caller. The
// decision endpoints report outcomes rather than enforcing them, so a
// denied check returns 200 with allowed=false; only the guarded resource
// routes translate denials into 403/404.
//
//	GET  /v1/access/check?project_id=&action=   single decision
//	POST /v1/access/batch                       readable-project filter
//	GET  /v1/projects/{project_id}              guarded project read
package api
