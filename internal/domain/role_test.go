package domain

import "testing"

func TestValidRole(t *testing.T) {
	for _, role := range []Role{RoleStudent, RoleMentor, RoleAdmin} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%s) = false", role)
		}
	}
	for _, role := range []Role{"", "superuser", "Admin", "ADMIN"} {
		if ValidRole(role) {
			t.Errorf("ValidRole(%s) = true", role)
		}
	}
}

func TestSatisfies(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		required []Role
		want     bool
	}{
		{"student meets student", RoleStudent, []Role{RoleStudent}, true},
		{"student denied mentor", RoleStudent, []Role{RoleMentor}, false},
		{"student denied admin", RoleStudent, []Role{RoleAdmin}, false},
		{"mentor subsumes student", RoleMentor, []Role{RoleStudent}, true},
		{"mentor meets mentor", RoleMentor, []Role{RoleMentor}, true},
		{"mentor denied admin", RoleMentor, []Role{RoleAdmin}, false},
		{"admin subsumes student", RoleAdmin, []Role{RoleStudent}, true},
		{"admin subsumes mentor", RoleAdmin, []Role{RoleMentor}, true},
		{"admin meets admin", RoleAdmin, []Role{RoleAdmin}, true},
		{"any of several", RoleMentor, []Role{RoleAdmin, RoleMentor}, true},
		{"empty requirement", RoleStudent, nil, true},
		{"unknown role grants nothing", Role("superuser"), []Role{RoleStudent}, false},
		{"unknown role fails empty requirement", Role(""), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.role.Satisfies(tt.required...); got != tt.want {
				t.Errorf("%s.Satisfies(%v) = %v, want %v", tt.role, tt.required, got, tt.want)
			}
		})
	}
}

func TestGrants(t *testing.T) {
	if got := len(RoleAdmin.Grants()); got != 3 {
		t.Errorf("admin grants %d roles, want 3", got)
	}
	if got := len(RoleStudent.Grants()); got != 1 {
		t.Errorf("student grants %d roles, want 1", got)
	}
	if got := Role("nope").Grants(); got != nil {
		t.Errorf("unknown role grants %v, want nil", got)
	}
}
