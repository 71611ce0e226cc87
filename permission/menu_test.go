package permission

import (
	"reflect"
	"testing"
)

func labels(entries []MenuEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Label)
	}
	return out
}

func TestCanonicalMenuOrder(t *testing.T) {
	got := labels(CanonicalMenu().Entries())
	want := []string{"Peminjaman Aset", "Pengembalian Aset", "Buat Akun", "Terima Aset", "Persetujuan Aset"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("canonical menu mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestVisibleEntriesPerRole(t *testing.T) {
	menu := CanonicalMenu()
	tests := []struct {
		role Role
		want []string
	}{
		{RoleUser, []string{"Peminjaman Aset", "Pengembalian Aset"}},
		{RoleAdmin, []string{"Peminjaman Aset", "Pengembalian Aset", "Buat Akun", "Terima Aset"}},
		{RoleMaster, []string{"Peminjaman Aset", "Pengembalian Aset", "Buat Akun", "Terima Aset", "Persetujuan Aset"}},
	}
	for _, tc := range tests {
		got := labels(VisibleEntries(tc.role, menu))
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("role %s: got %v want %v", tc.role, got, tc.want)
		}
	}
}

func TestVisibleEntriesMatchesSubsequenceDefinition(t *testing.T) {
	menu := CanonicalMenu()
	for _, role := range KnownRoles {
		var want []string
		for _, e := range menu.Entries() {
			if e.Allows(role) {
				want = append(want, e.Label)
			}
		}
		got := labels(VisibleEntries(role, menu))
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("role %s: gate %v differs from filter %v", role, got, want)
		}
		if again := labels(VisibleEntries(role, menu)); !reflect.DeepEqual(got, again) {
			t.Fatalf("role %s: gate not idempotent", role)
		}
	}
}

func TestVisibleEntriesFailsClosed(t *testing.T) {
	menu := CanonicalMenu()
	for _, role := range []Role{"", "guest", "MASTER"} {
		got := VisibleEntries(role, menu)
		if got == nil || len(got) != 0 {
			t.Fatalf("role %q: expected empty non-nil list, got %v", role, got)
		}
	}
	if got := VisibleEntries(RoleMaster, nil); len(got) != 0 {
		t.Fatalf("nil menu: expected empty list, got %v", got)
	}
}

func TestParseMenuRejectsUnknownRole(t *testing.T) {
	data := []byte("- label: Laporan\n  icon: report\n  roles: [auditor]\n")
	if _, err := ParseMenu(data, DefaultRegistry()); err == nil {
		t.Fatal("expected unknown role to be rejected")
	}
	if _, err := ParseMenu([]byte("- label: \"\"\n  roles: [user]\n"), DefaultRegistry()); err == nil {
		t.Fatal("expected empty label to be rejected")
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	menu := CanonicalMenu()
	entries := menu.Entries()
	entries[0].Label = "mutated"
	if menu.Entries()[0].Label == "mutated" {
		t.Fatal("Entries must not expose internal storage")
	}
}

func TestRegistryRejectsDuplicatesAndFrozen(t *testing.T) {
	r, err := NewRegistry(RoleUser)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if _, err := r.Register(RoleUser); err == nil {
		t.Fatal("expected duplicate role to be rejected")
	}
	r.Freeze()
	if _, err := r.Register(RoleAdmin); err == nil {
		t.Fatal("expected frozen registry to reject registration")
	}
	if r.Count() != 1 {
		t.Fatalf("expected 1 role, got %d", r.Count())
	}
	if name, ok := r.Name(0); !ok || name != RoleUser {
		t.Fatalf("expected bit 0 to be user, got %q ok=%v", name, ok)
	}
}

func TestParseRole(t *testing.T) {
	if ParseRole("  Admin ") != RoleAdmin {
		t.Fatal("expected role normalization")
	}
	if Role("guest").Known() {
		t.Fatal("guest is not a known role")
	}
}
