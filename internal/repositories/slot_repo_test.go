package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSlotSaveUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS storage_slots").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO storage_slots").
		WithArgs(SlotBookings, `[{"n":1}]`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := SlotRepo{DB: db}
	if err := repo.Save(context.Background(), SlotBookings, []map[string]int{{"n": 1}}); err != nil {
		t.Fatalf("save error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSlotLoadMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT payload FROM storage_slots").
		WithArgs(SlotSession).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	var out map[string]string
	found, err := SlotRepo{DB: db}.Load(context.Background(), SlotSession, &out)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if found {
		t.Fatalf("expected missing slot")
	}
}

func TestSlotLoadFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT payload FROM storage_slots").
		WithArgs(SlotSession).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(`{"token":"t","siteUrl":"u","username":"n"}`))

	var out map[string]string
	found, err := SlotRepo{DB: db}.Load(context.Background(), SlotSession, &out)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if !found || out["token"] != "t" {
		t.Fatalf("unexpected result: found=%v out=%v", found, out)
	}
}

func TestSlotLoadClearsUndecodablePayload(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("SELECT payload FROM storage_slots").
		WithArgs(SlotBookings).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(`{not json`))
	mock.ExpectExec("DELETE FROM storage_slots").
		WithArgs(SlotBookings).
		WillReturnResult(sqlmock.NewResult(0, 1))

	var out []map[string]any
	found, err := SlotRepo{DB: db}.Load(context.Background(), SlotBookings, &out)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if found {
		t.Fatalf("undecodable slot should report empty")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("slot was not cleared: %v", err)
	}
}
