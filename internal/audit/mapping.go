package audit

import "strings"

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// Route overrides where the generic verb/segment mapping reads poorly.
var routeOverrides = map[string]ActionResource{
	"POST /api/users/:id/approve":           {Action: "user_approved", Resource: "user"},
	"DELETE /api/users/:id/reject":          {Action: "user_rejected", Resource: "user"},
	"POST /api/projects/:id/members":        {Action: "member_added", Resource: "project"},
	"DELETE /api/projects/:id/members/:uid": {Action: "member_removed", Resource: "project"},
	"PATCH /api/tasks/:id/status":           {Action: "status_changed", Resource: "task"},
	"PATCH /api/notifications/:id/read":     {Action: "marked_read", Resource: "notification"},
	"POST /api/users/me/password":           {Action: "password_changed", Resource: "user"},
	"PATCH /api/users/me/email":             {Action: "email_changed", Resource: "user"},
}

// ParseRoute returns action and resource for an HTTP method and gin route pattern
// (e.g. DELETE /api/tasks/:id). The action is a verb derived from the method; the
// resource from the first path segment after /api, singularized.
func ParseRoute(method, route string) ActionResource {
	if ar, ok := routeOverrides[method+" "+route]; ok {
		return ar
	}
	resource := "unknown"
	path := strings.TrimPrefix(route, "/api/")
	if path != "" && path != route {
		seg := path
		if i := strings.IndexByte(seg, '/'); i >= 0 {
			seg = seg[:i]
		}
		resource = singularize(seg)
	}
	return ActionResource{Action: methodToAction(method), Resource: resource}
}

func singularize(s string) string {
	if strings.HasSuffix(s, "s") && len(s) > 1 {
		return s[:len(s)-1]
	}
	return s
}

func methodToAction(method string) string {
	switch method {
	case "POST":
		return "create"
	case "PUT", "PATCH":
		return "update"
	case "DELETE":
		return "delete"
	case "GET":
		return "get"
	default:
		return strings.ToLower(method)
	}
}
