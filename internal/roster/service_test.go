package roster

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ontrack/internal/apperr"
	"github.com/starford/ontrack/internal/index"
	"github.com/starford/ontrack/internal/models"
	"github.com/starford/ontrack/internal/storage"
	"github.com/starford/ontrack/internal/testutil"
	"github.com/starford/ontrack/internal/track"
)

func testService(t *testing.T, students ...models.Student) (*Service, string) {
	t.Helper()
	dir, store := testutil.TestDataDir(t)
	db := testutil.TestDB(t)
	if len(students) > 0 {
		testutil.WriteDataset(t, dir, "roster.json", students...)
		data, err := store.Read("roster.json")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := index.IndexFile(db, "roster.json", data); err != nil {
			t.Fatalf("IndexFile: %v", err)
		}
	}
	return NewService(store, db, track.DefaultClassifier), dir
}

func TestStudents_Summary(t *testing.T) {
	svc, _ := testService(t,
		testutil.Student("on", "Winter2025", "2025-01-10", 700),
		testutil.Student("off", "Winter2025", "2025-01-10", 500, false, true, true, true),
	)
	sum, err := svc.Students(context.Background(), track.AllFilter)
	if err != nil {
		t.Fatalf("Students: %v", err)
	}
	if sum.TotalStudents != 2 || sum.PercentOnTrack != 50 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.OffTrackReasonCounts[track.ReasonResumeMissing] != 1 || sum.OffTrackReasonCounts[track.ReasonLowCodewarsScore] != 1 {
		t.Errorf("reasons = %v", sum.OffTrackReasonCounts)
	}
}

func TestStudents_InvalidFilter(t *testing.T) {
	svc, _ := testService(t)
	_, err := svc.Students(context.Background(), track.Filter{Season: "Monsoon"})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestStudent_Detail(t *testing.T) {
	s := testutil.Student("ada", "Fall2026", "2026-09-01", 600, true, false, true, true)
	s.Notes = []models.Note{{Comment: "Needs LinkedIn"}}
	svc, _ := testService(t, s)

	d, err := svc.Student(context.Background(), "ada")
	if err != nil {
		t.Fatalf("Student: %v", err)
	}
	if d.Status != track.StatusOffTrack || d.Season != "Fall" {
		t.Errorf("status/season = %q/%q", d.Status, d.Season)
	}
	if len(d.Reasons) != 2 || d.Reasons[0] != track.ReasonLinkedInMissing || d.ReasonLabels[1] != "Low Codewars Score" {
		t.Errorf("reasons = %v %v", d.Reasons, d.ReasonLabels)
	}
	if len(d.Notes) != 1 || d.Notes[0].ID == "" || d.Notes[0].Commenter != DefaultCommenter {
		t.Errorf("notes = %+v", d.Notes)
	}
}

func TestStudent_NotFound(t *testing.T) {
	svc, _ := testService(t)
	if _, err := svc.Student(context.Background(), "ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestNotes_AddAndDelete(t *testing.T) {
	svc, _ := testService(t, testutil.Student("ada", "Fall2026", "2026-09-01", 700))
	ctx := context.Background()

	n, err := svc.AddNote(ctx, "ada", "", "Great progress")
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if n.Commenter != DefaultCommenter || n.ID == "" {
		t.Errorf("note = %+v", n)
	}
	if _, err := svc.AddNote(ctx, "ada", "Mentor", "Follow up"); err != nil {
		t.Fatalf("AddNote: %v", err)
	}

	d, _ := svc.Student(ctx, "ada")
	if len(d.Notes) != 2 || d.Notes[0].Comment != "Great progress" || d.Notes[1].Commenter != "Mentor" {
		t.Fatalf("notes = %+v", d.Notes)
	}

	if err := svc.DeleteNote(ctx, "ada", n.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if err := svc.DeleteNote(ctx, "ada", n.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
	d, _ = svc.Student(ctx, "ada")
	if len(d.Notes) != 1 || d.Notes[0].Comment != "Follow up" {
		t.Errorf("notes after delete = %+v", d.Notes)
	}
}

func TestNotes_Validation(t *testing.T) {
	svc, _ := testService(t, testutil.Student("ada", "Fall2026", "2026-09-01", 700))
	ctx := context.Background()
	if _, err := svc.AddNote(ctx, "ada", "Mentor", "   "); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("empty comment err = %v", err)
	}
	if _, err := svc.AddNote(ctx, "ghost", "Mentor", "hi"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown student err = %v", err)
	}
}

func TestNotes_SurviveReload(t *testing.T) {
	svc, dir := testService(t, testutil.Student("ada", "Fall2026", "2026-09-01", 700))
	ctx := context.Background()
	if _, err := svc.AddNote(ctx, "ada", "Mentor", "keep me"); err != nil {
		t.Fatal(err)
	}

	testutil.WriteDataset(t, dir, "roster.json", testutil.Student("ada", "Fall2026", "2026-09-01", 100))
	data, _ := os.ReadFile(filepath.Join(dir, "roster.json"))
	if _, err := svc.Import(ctx, "roster.json", data); err != nil {
		t.Fatalf("Import: %v", err)
	}

	d, _ := svc.Student(ctx, "ada")
	if d.Status != track.StatusOffTrack {
		t.Errorf("status = %q, want reloaded score to apply", d.Status)
	}
	if len(d.Notes) != 1 || d.Notes[0].Comment != "keep me" {
		t.Errorf("notes = %+v", d.Notes)
	}
}

func TestTrendAndCohorts(t *testing.T) {
	svc, _ := testService(t,
		testutil.Student("a", "Summer2025", "2025-06-01", 700),
		testutil.Student("b", "Winter2025", "2025-01-10", 100),
		testutil.Student("c", "Summer2025", "2025-06-01", 100),
		testutil.Student("d", "24.1", "2024-01-01", 700),
	)
	ctx := context.Background()

	rows, err := svc.Trend(ctx, track.SortStartDate, true)
	if err != nil {
		t.Fatalf("Trend: %v", err)
	}
	if len(rows) != 3 || rows[0].CohortCode != "24.1" || rows[2].CohortCode != "Summer2025" {
		t.Errorf("trend = %+v", rows)
	}
	if rows[2].PercentOnTrack() != 50 {
		t.Errorf("summer percent = %d", rows[2].PercentOnTrack())
	}

	cohorts, err := svc.Cohorts(ctx)
	if err != nil {
		t.Fatalf("Cohorts: %v", err)
	}
	byCode := map[string]CohortInfo{}
	for _, c := range cohorts {
		byCode[c.CohortCode] = c
	}
	if c := byCode["Summer2025"]; c.Season != "Summer" || c.Year != "2025" || c.Students != 2 {
		t.Errorf("Summer2025 = %+v", c)
	}
	if c := byCode["24.1"]; c.Season != "Unknown" || c.Year != "" {
		t.Errorf("24.1 = %+v", c)
	}
}

func TestSearch(t *testing.T) {
	svc, _ := testService(t, testutil.Student("ada", "Fall2026", "2026-09-01", 700))
	if _, err := svc.Search(context.Background(), " ", 10); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("blank query err = %v", err)
	}
	res, err := svc.Search(context.Background(), "ada", 10)
	if err != nil || len(res) != 1 {
		t.Errorf("results = %+v, err = %v", res, err)
	}
}

func TestImport(t *testing.T) {
	svc, dir := testService(t)
	ctx := context.Background()

	if _, err := svc.Import(ctx, "roster.csv", []byte("x")); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("csv err = %v", err)
	}
	if _, err := svc.Import(ctx, "bad.json", []byte(`[{"username":"x"}]`)); !errors.Is(err, apperr.ErrInvalidRecord) {
		t.Errorf("invalid record err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.json")); !os.IsNotExist(err) {
		t.Error("invalid dataset must not be written")
	}

	data := []byte(`- username: lin
  names: {preferredName: Lin, surname: Chen}
  certifications: {resume: true, linkedin: true, github: true, mockInterview: true}
  codewars: {current: {total: 900, lastWeek: 5}}
  cohort: {cohortCode: Spring2026, startDate: "2026-03-01"}
`)
	n, err := svc.Import(ctx, "cohorts/spring.yaml", data)
	if err != nil || n != 1 {
		t.Fatalf("Import = %d, %v", n, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "cohorts", "spring.yaml")); err != nil {
		t.Errorf("imported file not written: %v", err)
	}
	d, err := svc.Student(ctx, "lin")
	if err != nil || d.Status != track.StatusOnTrack {
		t.Errorf("imported student = %+v, %v", d, err)
	}
}

// readOnlyStore fails every write.
type readOnlyStore struct {
	storage.Provider
}

func (readOnlyStore) Write(string, []byte) error {
	return errors.New("disk full")
}

func importData(t *testing.T, students ...models.Student) []byte {
	t.Helper()
	src := t.TempDir()
	testutil.WriteDataset(t, src, "in.json", students...)
	data, err := os.ReadFile(filepath.Join(src, "in.json"))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestImport_RejectsEscapingNames(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	data := importData(t, testutil.Student("eve", "Fall2026", "2026-09-01", 700))

	for _, name := range []string{"../outside.json", "/tmp/abs.json", ".hidden.json"} {
		if _, err := svc.Import(ctx, name, data); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("Import(%q) err = %v, want ErrInvalidInput", name, err)
		}
	}
	sum, err := svc.Students(ctx, track.AllFilter)
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalStudents != 0 {
		t.Errorf("rejected imports left %d students indexed", sum.TotalStudents)
	}
}

func TestImport_WriteFailureClearsNewSource(t *testing.T) {
	_, store := testutil.TestDataDir(t)
	db := testutil.TestDB(t)
	svc := NewService(readOnlyStore{store}, db, track.DefaultClassifier)
	ctx := context.Background()

	data := importData(t, testutil.Student("eve", "Fall2026", "2026-09-01", 700))
	if _, err := svc.Import(ctx, "new.json", data); err == nil {
		t.Fatal("expected write error")
	}
	sum, err := svc.Students(ctx, track.AllFilter)
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalStudents != 0 {
		t.Errorf("failed import left %d students indexed", sum.TotalStudents)
	}
	if sums, _ := db.AllChecksums(); len(sums) != 0 {
		t.Errorf("failed import left sources %v", sums)
	}
}

func TestImport_WriteFailureRestoresPreviousFile(t *testing.T) {
	dir, store := testutil.TestDataDir(t)
	db := testutil.TestDB(t)
	testutil.WriteDataset(t, dir, "roster.json", testutil.Student("ada", "Winter2025", "2025-01-10", 700))
	old, err := store.Read("roster.json")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := index.IndexFile(db, "roster.json", old); err != nil {
		t.Fatal(err)
	}
	svc := NewService(readOnlyStore{store}, db, track.DefaultClassifier)
	ctx := context.Background()

	data := importData(t, testutil.Student("bob", "Winter2025", "2025-01-10", 700))
	if _, err := svc.Import(ctx, "roster.json", data); err == nil {
		t.Fatal("expected write error")
	}
	if _, err := svc.Student(ctx, "ada"); err != nil {
		t.Errorf("previous student should be restored: %v", err)
	}
	if _, err := svc.Student(ctx, "bob"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unwritten student still indexed: %v", err)
	}
}
