package store

import (
	"errors"
	"os"
	"os/exec"
	"testing"

	"github.com/matsen/flatrec/internal/git"
)

func headers(t *testing.T, d *Diff) (added, removed, changed []string) {
	t.Helper()
	for _, e := range d.Added {
		added = append(added, e.Header())
	}
	for _, e := range d.Removed {
		removed = append(removed, e.Header())
	}
	for _, c := range d.Changed {
		changed = append(changed, c.Header)
	}
	return added, removed, changed
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDiffEntities(t *testing.T) {
	sch := testSchema(t)
	before := []string{"alice:1:", "bob:2:rome", "carol:3:"}
	after := []string{"bob:2:paris", "carol:3:", "dave:0:", "alice:1:"}

	d, err := DiffEntities(sch, before, after)
	if err != nil {
		t.Fatalf("DiffEntities: %v", err)
	}

	added, removed, changed := headers(t, d)
	if !equalStrings(added, []string{"dave"}) {
		t.Errorf("Added = %v, want [dave]", added)
	}
	if len(removed) != 0 {
		t.Errorf("Removed = %v, want none", removed)
	}
	if !equalStrings(changed, []string{"bob"}) {
		t.Errorf("Changed = %v, want [bob]", changed)
	}
	if !equalStrings(d.Changed[0].Fields, []string{"city"}) {
		t.Errorf("Changed[0].Fields = %v, want [city]", d.Changed[0].Fields)
	}
	if d.Changed[0].Before.Value("city") != "rome" || d.Changed[0].After.Value("city") != "paris" {
		t.Errorf("Changed[0] = %v -> %v", d.Changed[0].Before, d.Changed[0].After)
	}
}

func TestDiffEntities_Removed(t *testing.T) {
	d, err := DiffEntities(testSchema(t), []string{"bob:2:", "alice:1:"}, nil)
	if err != nil {
		t.Fatalf("DiffEntities: %v", err)
	}
	_, removed, _ := headers(t, d)
	if !equalStrings(removed, []string{"alice", "bob"}) {
		t.Errorf("Removed = %v, want sorted [alice bob]", removed)
	}
}

func TestDiffEntities_Identical(t *testing.T) {
	lines := []string{"alice:1:", "bob:2:"}
	d, err := DiffEntities(testSchema(t), lines, lines)
	if err != nil {
		t.Fatalf("DiffEntities: %v", err)
	}
	if !d.Empty() {
		t.Errorf("Diff = %+v, want empty", d)
	}
}

func TestDiffEntities_InvalidLine(t *testing.T) {
	if _, err := DiffEntities(testSchema(t), []string{"garbage"}, nil); err == nil {
		t.Error("DiffEntities() expected error for invalid line")
	}
}

// runGit runs a git command in dir, failing the test on error.
func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		"GIT_CONFIG_GLOBAL=/dev/null", "GIT_CONFIG_NOSYSTEM=1")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func TestStoreDiffSince(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	s, root := setupTestStore(t)
	if _, err := s.AddEntity(map[string]string{"name": "alice", "age": "30"}); err != nil {
		t.Fatalf("AddEntity: %v", err)
	}

	runGit(t, root, "init", "-q")
	runGit(t, root, "add", ".")
	runGit(t, root, "commit", "-q", "-m", "initial")

	if _, err := s.UpdateField("alice", "age", "31"); err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	if _, err := s.AddEntity(map[string]string{"name": "bob"}); err != nil {
		t.Fatalf("AddEntity: %v", err)
	}

	d, err := s.DiffSince("HEAD")
	if err != nil {
		t.Fatalf("DiffSince: %v", err)
	}
	added, removed, changed := headers(t, d)
	if !equalStrings(added, []string{"bob"}) || len(removed) != 0 || !equalStrings(changed, []string{"alice"}) {
		t.Errorf("DiffSince = added %v removed %v changed %v", added, removed, changed)
	}

	if _, err := s.DiffSince("no-such-ref"); !errors.Is(err, git.ErrCommitNotFound) {
		t.Errorf("DiffSince(no-such-ref) error = %v, want ErrCommitNotFound", err)
	}
}
