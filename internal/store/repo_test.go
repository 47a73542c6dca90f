package store

import (
	"errors"
	"os"
	"testing"

	"github.com/mizutama/koyomi/internal/apperr"
	"github.com/mizutama/koyomi/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "koyomi-test-*.db")
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

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM characters`).Scan(&count); err != nil {
		t.Fatalf("characters table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM settings`).Scan(&count); err != nil {
		t.Fatalf("settings table missing: %v", err)
	}
}

func TestCreateAndGetCharacter(t *testing.T) {
	db := testDB(t)
	id, err := db.CreateCharacter(models.Character{
		Name:                "Asuka",
		Birthday:            "12-04",
		Source:              "Evangelion",
		UserBirthdayMessage: "Happy birthday, idiot!",
	})
	if err != nil {
		t.Fatalf("CreateCharacter: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}

	c, err := db.GetCharacter(id)
	if err != nil {
		t.Fatalf("GetCharacter: %v", err)
	}
	if c.Name != "Asuka" || c.Birthday != "12-04" || c.Source != "Evangelion" {
		t.Errorf("unexpected character: %+v", c)
	}
}

func TestGetCharacter_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetCharacter("no-such-id")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateCharacter(t *testing.T) {
	db := testDB(t)
	id, _ := db.CreateCharacter(models.Character{Name: "Rei", Birthday: "03-30"})

	err := db.UpdateCharacter(id, models.Character{Name: "Rei Ayanami", Birthday: "03-30", Image: "data:image/png;base64,AAAA"})
	if err != nil {
		t.Fatalf("UpdateCharacter: %v", err)
	}
	c, _ := db.GetCharacter(id)
	if c.Name != "Rei Ayanami" || c.Image != "data:image/png;base64,AAAA" {
		t.Errorf("update not applied: %+v", c)
	}
}

func TestUpdateCharacter_NotFound(t *testing.T) {
	db := testDB(t)
	err := db.UpdateCharacter("missing", models.Character{Name: "X", Birthday: "01-01"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteCharacter_Idempotent(t *testing.T) {
	db := testDB(t)
	id, _ := db.CreateCharacter(models.Character{Name: "Shinji", Birthday: "06-06"})

	if err := db.DeleteCharacter(id); err != nil {
		t.Fatalf("DeleteCharacter: %v", err)
	}
	if _, err := db.GetCharacter(id); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("character still present after delete")
	}
	// Second delete of the same id is not an error.
	if err := db.DeleteCharacter(id); err != nil {
		t.Errorf("repeat delete: %v", err)
	}
}

func TestListByBirthday(t *testing.T) {
	db := testDB(t)
	_, _ = db.CreateCharacter(models.Character{Name: "A", Birthday: "06-15"})
	_, _ = db.CreateCharacter(models.Character{Name: "B", Birthday: "06-15"})
	_, _ = db.CreateCharacter(models.Character{Name: "C", Birthday: "01-01"})

	got, err := db.ListByBirthday("06-15")
	if err != nil {
		t.Fatalf("ListByBirthday: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	// Insertion order is preserved.
	if got[0].Name != "A" || got[1].Name != "B" {
		t.Errorf("order = %s, %s; want A, B", got[0].Name, got[1].Name)
	}
}

func TestBulkCreateCharacters(t *testing.T) {
	db := testDB(t)
	n, err := db.BulkCreateCharacters([]models.Character{
		{Name: "A", Birthday: "01-05"},
		{Name: "B", Birthday: "03-10"},
	})
	if err != nil {
		t.Fatalf("BulkCreateCharacters: %v", err)
	}
	if n != 2 {
		t.Errorf("inserted = %d, want 2", n)
	}
	all, _ := db.ListCharacters()
	if len(all) != 2 {
		t.Errorf("list size = %d, want 2", len(all))
	}
}

func TestSettings(t *testing.T) {
	db := testDB(t)

	if _, err := db.GetSetting(models.SettingUserBirthday); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unset setting: err = %v, want ErrNotFound", err)
	}

	if err := db.PutSetting(models.SettingUserBirthday, "06-15"); err != nil {
		t.Fatalf("PutSetting: %v", err)
	}
	v, err := db.GetSetting(models.SettingUserBirthday)
	if err != nil || v != "06-15" {
		t.Errorf("GetSetting = %q, %v; want 06-15", v, err)
	}

	// Overwrite.
	_ = db.PutSetting(models.SettingUserBirthday, "12-31")
	v, _ = db.GetSetting(models.SettingUserBirthday)
	if v != "12-31" {
		t.Errorf("after overwrite = %q, want 12-31", v)
	}
}
