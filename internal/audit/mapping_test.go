package audit

import "testing"

func TestParseRoute_Overrides(t *testing.T) {
	cases := []struct {
		method, route string
		want          ActionResource
	}{
		{"POST", "/api/users/:id/approve", ActionResource{Action: "user_approved", Resource: "user"}},
		{"DELETE", "/api/users/:id/reject", ActionResource{Action: "user_rejected", Resource: "user"}},
		{"POST", "/api/projects/:id/members", ActionResource{Action: "member_added", Resource: "project"}},
		{"PATCH", "/api/tasks/:id/status", ActionResource{Action: "status_changed", Resource: "task"}},
	}
	for _, c := range cases {
		got := ParseRoute(c.method, c.route)
		if got != c.want {
			t.Errorf("ParseRoute(%s %s) = %+v, want %+v", c.method, c.route, got, c.want)
		}
	}
}

func TestParseRoute_Generic(t *testing.T) {
	cases := []struct {
		method, route string
		want          ActionResource
	}{
		{"POST", "/api/projects", ActionResource{Action: "create", Resource: "project"}},
		{"DELETE", "/api/tasks/:id", ActionResource{Action: "delete", Resource: "task"}},
		{"PUT", "/api/projects/:id", ActionResource{Action: "update", Resource: "project"}},
		{"GET", "/api/notifications", ActionResource{Action: "get", Resource: "notification"}},
	}
	for _, c := range cases {
		got := ParseRoute(c.method, c.route)
		if got != c.want {
			t.Errorf("ParseRoute(%s %s) = %+v, want %+v", c.method, c.route, got, c.want)
		}
	}
}

func TestParseRoute_UnknownPrefix(t *testing.T) {
	got := ParseRoute("GET", "/healthz")
	if got.Resource != "unknown" {
		t.Errorf("Resource = %q, want unknown", got.Resource)
	}
}
