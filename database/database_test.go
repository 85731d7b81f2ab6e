package database

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"

	"grievance-processor/models"
)

var (
	db   *sql.DB
	mock sqlmock.Sqlmock
)

func setUp() {
	db, mock, _ = sqlmock.New()
}

func tearDown() {
	db.Close()
}

var it = beforeeach.Create(setUp, tearDown)

func complaintColumns() []string {
	return []string{
		"id", "created_at", "full_name", "phone_number", "language",
		"description", "normalized_desc", "location", "ward_zone", "image_path",
		"status", "category", "priority", "score", "ai_label", "ai_confidence",
	}
}

func TestInsertPending(t *testing.T) {
	it(func() {
		d := &Database{db: db}

		mock.ExpectExec("INSERT INTO complaints").
			WithArgs(sqlmock.AnyArg(), "Asha Patel", "9876543210", "hi",
				"bada khadda hai", "Main road", "Ward 12", "uploads/khadda.jpg", models.StatusPending).
			WillReturnResult(sqlmock.NewResult(7, 1))

		id, err := d.InsertPending(context.Background(), &models.Complaint{
			FullName:    "Asha Patel",
			PhoneNumber: "9876543210",
			Language:    "hi",
			Description: "bada khadda hai",
			Location:    "Main road",
			WardZone:    "Ward 12",
			ImagePath:   "uploads/khadda.jpg",
		})
		if err != nil {
			t.Fatalf("InsertPending returned error: %v", err)
		}
		if id != 7 {
			t.Errorf("id = %d, want 7", id)
		}
	})
}

func TestUpdateVerified(t *testing.T) {
	it(func() {
		d := &Database{db: db}

		triage := models.TriageResult{
			Category:       "Roads & Infrastructure",
			Priority:       models.PriorityHigh,
			Score:          7.5,
			NormalizedDesc: "urgent pothole on main road",
		}
		cls := models.ClassificationResult{Detected: true, Label: "pothole", Confidence: 0.9}

		mock.ExpectExec("UPDATE complaints").
			WithArgs(models.StatusVerified, triage.Category, triage.Priority, triage.Score,
				triage.NormalizedDesc, cls.Label, cls.Confidence, int64(7), models.StatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := d.UpdateVerified(context.Background(), 7, triage, cls); err != nil {
			t.Errorf("UpdateVerified returned error: %v", err)
		}
	})
}

func TestUpdateVerifiedRefusesNonPendingRow(t *testing.T) {
	it(func() {
		d := &Database{db: db}

		// Row already left "pending": status guard matches nothing.
		mock.ExpectExec("UPDATE complaints").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := d.UpdateVerified(context.Background(), 7, models.TriageResult{}, models.ClassificationResult{})
		if err == nil {
			t.Error("expected error updating a non-pending complaint")
		}
	})
}

func TestUpdateRejected(t *testing.T) {
	it(func() {
		d := &Database{db: db}

		cls := models.ClassificationResult{Detected: false, Label: "none", Confidence: 0}

		mock.ExpectExec("UPDATE complaints").
			WithArgs(models.StatusRejected, cls.Label, cls.Confidence, int64(3), models.StatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := d.UpdateRejected(context.Background(), 3, cls); err != nil {
			t.Errorf("UpdateRejected returned error: %v", err)
		}
	})
}

func TestMarkPendingReview(t *testing.T) {
	it(func() {
		d := &Database{db: db}

		mock.ExpectExec("UPDATE complaints").
			WithArgs(models.StatusPendingReview, int64(5), models.StatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := d.MarkPendingReview(context.Background(), 5); err != nil {
			t.Errorf("MarkPendingReview returned error: %v", err)
		}
	})
}

func TestGetComplaint(t *testing.T) {
	it(func() {
		d := &Database{db: db}

		rows := sqlmock.NewRows(complaintColumns()).
			AddRow(7, "2026-08-30T10:00:00Z", "Asha Patel", "9876543210", "hi",
				"bada khadda hai", "urgent pothole on main road", "Main road", "Ward 12", "uploads/khadda.jpg",
				models.StatusVerified, "Roads & Infrastructure", models.PriorityHigh, 7.5, "pothole", 0.9)

		mock.ExpectQuery("SELECT (.+) FROM complaints").
			WithArgs(int64(7)).
			WillReturnRows(rows)

		c, err := d.GetComplaint(context.Background(), 7)
		if err != nil {
			t.Fatalf("GetComplaint returned error: %v", err)
		}
		if c == nil {
			t.Fatal("GetComplaint returned nil complaint")
		}
		if c.ID != 7 || c.Status != models.StatusVerified || c.Category != "Roads & Infrastructure" {
			t.Errorf("unexpected complaint %+v", c)
		}
		if c.CreatedAt.IsZero() {
			t.Error("created_at was not parsed")
		}
	})
}

func TestGetComplaintNotFound(t *testing.T) {
	it(func() {
		d := &Database{db: db}

		mock.ExpectQuery("SELECT (.+) FROM complaints").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(complaintColumns()))

		c, err := d.GetComplaint(context.Background(), 99)
		if err != nil {
			t.Fatalf("GetComplaint returned error: %v", err)
		}
		if c != nil {
			t.Errorf("expected nil complaint, got %+v", c)
		}
	})
}

func TestListComplaints(t *testing.T) {
	it(func() {
		d := &Database{db: db}

		rows := sqlmock.NewRows(complaintColumns()).
			AddRow(8, "2026-08-30T11:00:00Z", "Ravi Kumar", "9123456780", "en",
				"garbage everywhere", "garbage everywhere", "Market", "Ward 3", "uploads/garbage.jpg",
				models.StatusVerified, "Sanitation & Waste", models.PriorityLow, 2.5, "garbage", 0.5).
			AddRow(7, "2026-08-30T10:00:00Z", "Asha Patel", "9876543210", "hi",
				"bada khadda hai", "urgent pothole on main road", "Main road", "Ward 3", "uploads/khadda.jpg",
				models.StatusVerified, "Roads & Infrastructure", models.PriorityHigh, 7.5, "pothole", 0.9)

		mock.ExpectQuery("SELECT (.+) FROM complaints").
			WithArgs(models.StatusVerified, models.StatusVerified, "Ward 3", "Ward 3", 50).
			WillReturnRows(rows)

		complaints, err := d.ListComplaints(context.Background(), models.StatusVerified, "Ward 3", 50)
		if err != nil {
			t.Fatalf("ListComplaints returned error: %v", err)
		}
		if len(complaints) != 2 {
			t.Fatalf("got %d complaints, want 2", len(complaints))
		}
		if complaints[0].ID != 8 || complaints[1].ID != 7 {
			t.Errorf("unexpected ordering: %d, %d", complaints[0].ID, complaints[1].ID)
		}
	})
}
