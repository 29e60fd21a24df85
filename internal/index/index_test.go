package index

import (
	"errors"
	"os"
	"testing"

	"github.com/starford/ontrack/internal/apperr"
	"github.com/starford/ontrack/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "ontrack-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func stu(username, cohort string, total int) models.Student {
	return models.Student{
		Username:       username,
		Names:          models.Names{PreferredName: username, Surname: "Doe"},
		Certifications: models.Certifications{Resume: true, LinkedIn: true, GitHub: true, MockInterview: true},
		Codewars:       models.Codewars{Current: models.CodewarsScore{Total: total}},
		Cohort:         models.Cohort{CohortCode: cohort, StartDate: "2025-01-10"},
		Notes:          []models.Note{},
	}
}

func usernames(students []models.Student) []string {
	out := make([]string, len(students))
	for i, s := range students {
		out[i] = s.Username
	}
	return out
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM sources`).Scan(&count); err != nil {
		t.Fatalf("sources table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM students`).Scan(&count); err != nil {
		t.Fatalf("students table missing: %v", err)
	}
}

func TestReplaceSourceAndList(t *testing.T) {
	db := testDB(t)
	if err := db.ReplaceSource("b.json", "cs-b", []models.Student{stu("zed", "Fall2025", 700), stu("amy", "Fall2025", 100)}); err != nil {
		t.Fatalf("ReplaceSource: %v", err)
	}
	if err := db.ReplaceSource("a.json", "cs-a", []models.Student{stu("max", "Winter2025", 900)}); err != nil {
		t.Fatalf("ReplaceSource: %v", err)
	}

	got, err := db.ListStudents()
	if err != nil {
		t.Fatalf("ListStudents: %v", err)
	}
	want := []string{"max", "zed", "amy"}
	if len(got) != len(want) {
		t.Fatalf("students = %v, want %v", usernames(got), want)
	}
	for i := range want {
		if got[i].Username != want[i] {
			t.Errorf("students = %v, want %v (source, then file order)", usernames(got), want)
			break
		}
	}

	cs, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if cs["a.json"] != "cs-a" || cs["b.json"] != "cs-b" {
		t.Errorf("checksums = %v", cs)
	}
}

func TestReplaceSourceReplacesExisting(t *testing.T) {
	db := testDB(t)
	_ = db.ReplaceSource("r.json", "1", []models.Student{stu("old", "Fall2025", 1)})
	if err := db.ReplaceSource("r.json", "2", []models.Student{stu("new", "Fall2025", 1)}); err != nil {
		t.Fatalf("ReplaceSource: %v", err)
	}

	if _, err := db.GetStudent("old"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("old student should be gone, err = %v", err)
	}
	if _, err := db.GetStudent("new"); err != nil {
		t.Errorf("GetStudent(new): %v", err)
	}
	cs, _ := db.AllChecksums()
	if cs["r.json"] != "2" {
		t.Errorf("checksum = %q, want 2", cs["r.json"])
	}
}

func TestReplaceSourceRejectsUsernameFromOtherSource(t *testing.T) {
	db := testDB(t)
	_ = db.ReplaceSource("a.json", "1", []models.Student{stu("dup", "Fall2025", 1)})

	err := db.ReplaceSource("b.json", "2", []models.Student{stu("other", "Fall2025", 1), stu("dup", "Fall2025", 1)})
	if !errors.Is(err, apperr.ErrInvalidRecord) {
		t.Fatalf("err = %v, want ErrInvalidRecord", err)
	}
	if _, err := db.GetStudent("other"); !errors.Is(err, apperr.ErrNotFound) {
		t.Error("failed replacement must not leave partial rows")
	}
	if _, ok := mustChecksums(t, db)["b.json"]; ok {
		t.Error("failed replacement must not record the source")
	}
}

func mustChecksums(t *testing.T, db *DB) map[string]string {
	t.Helper()
	cs, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	return cs
}

func TestGetStudentRoundTrip(t *testing.T) {
	db := testDB(t)
	s := stu("ada", "Winter2025", 650)
	s.Names.MiddleName = "King"
	s.Notes = []models.Note{{Commenter: "Mentor", Comment: "On it"}}
	s.Cohort.Scores = models.Scores{Assignments: 0.5, Projects: 0.75, Assessments: 1}
	_ = db.ReplaceSource("a.json", "1", []models.Student{s})

	got, err := db.GetStudent("ada")
	if err != nil {
		t.Fatalf("GetStudent: %v", err)
	}
	if got.FullName() != "ada King Doe" || got.Codewars.Current.Total != 650 {
		t.Errorf("student = %+v", got)
	}
	if len(got.Notes) != 1 || got.Notes[0].Comment != "On it" {
		t.Errorf("notes = %+v", got.Notes)
	}
	if got.Cohort.Scores.Projects != 0.75 {
		t.Errorf("scores = %+v", got.Cohort.Scores)
	}
}

func TestGetStudent_NotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.GetStudent("ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteSource(t *testing.T) {
	db := testDB(t)
	_ = db.ReplaceSource("del.json", "x", []models.Student{stu("gone", "Fall2025", 1)})

	if err := db.DeleteSource("del.json"); err != nil {
		t.Fatalf("DeleteSource: %v", err)
	}
	if cs := mustChecksums(t, db); len(cs) != 0 {
		t.Errorf("checksums after delete = %v", cs)
	}
	students, _ := db.ListStudents()
	if len(students) != 0 {
		t.Errorf("students after delete = %v", usernames(students))
	}
}

func TestDeleteSource_ReportsFailedDelete(t *testing.T) {
	db := testDB(t)
	if err := db.ReplaceSource("keep.json", "x", []models.Student{stu("kept", "Fall2025", 1)}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.conn.Exec(`CREATE TRIGGER students_locked BEFORE DELETE ON students
		BEGIN SELECT RAISE(ABORT, 'students locked'); END`); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteSource("keep.json"); err == nil {
		t.Fatal("DeleteSource should report the failed delete")
	}
	if cs := mustChecksums(t, db); cs["keep.json"] != "x" {
		t.Errorf("source should survive a failed delete, checksums = %v", cs)
	}
	students, _ := db.ListStudents()
	if len(students) != 1 {
		t.Errorf("students = %v, want [kept]", usernames(students))
	}
}

func TestCohorts(t *testing.T) {
	db := testDB(t)
	_ = db.ReplaceSource("a.json", "1", []models.Student{
		stu("a", "Winter2025", 1),
		stu("b", "Fall2025", 1),
		stu("c", "Winter2025", 1),
	})
	rows, err := db.Cohorts()
	if err != nil {
		t.Fatalf("Cohorts: %v", err)
	}
	if len(rows) != 2 || rows[0].CohortCode != "Fall2025" || rows[1].Students != 2 {
		t.Errorf("cohorts = %+v", rows)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	s := stu("ada@example.com", "Winter2025", 1)
	s.Names = models.Names{PreferredName: "Ada", Surname: "Lovelace"}
	_ = db.ReplaceSource("a.json", "1", []models.Student{s, stu("bob@example.com", "Fall2025", 1)})

	results, err := db.Search("Lovelace", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Username != "ada@example.com" || results[0].FullName != "Ada Lovelace" {
		t.Errorf("search results = %+v, want 1 hit for ada", results)
	}
}
