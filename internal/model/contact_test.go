package model

import "testing"

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name              string
		page, limit, tot  int
		wantPages         int
		wantNext, wantPrv bool
	}{
		{"empty", 1, 10, 0, 0, false, false},
		{"single page", 1, 10, 7, 1, false, false},
		{"first of many", 1, 10, 25, 3, true, false},
		{"middle", 2, 10, 25, 3, true, true},
		{"last exact", 3, 10, 30, 3, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.limit, tt.tot)
			if p.Pages != tt.wantPages {
				t.Errorf("pages: got %d, want %d", p.Pages, tt.wantPages)
			}
			if p.HasNext != tt.wantNext {
				t.Errorf("has_next: got %v, want %v", p.HasNext, tt.wantNext)
			}
			if p.HasPrev != tt.wantPrv {
				t.Errorf("has_prev: got %v, want %v", p.HasPrev, tt.wantPrv)
			}
			if p.Current != tt.page || p.Total != tt.tot {
				t.Errorf("unexpected pagination %+v", p)
			}
		})
	}
}

func TestIsValidContactStatus(t *testing.T) {
	for _, s := range []string{"new", "read", "replied", "archived"} {
		if !IsValidContactStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"", "unread", "NEW", "deleted"} {
		if IsValidContactStatus(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"ada@example.com", true},
		{"ada@my_site.com", true},
		{"first.last@mail.example.co", true},
		{"not-an-email", false},
		{"a@b", false},
		{"ada@example.toolong", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidEmail(tt.email); got != tt.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}
