package store

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/elyriond/llmmail/internal/models"
)

var lookFeelCols = []string{"id", "name", "brand_color", "accent_color", "logo_url", "font_family", "created_at", "updated_at"}

func TestLookAndFeelList(t *testing.T) {
	db, mock := mockDB(t)
	now := time.Now()
	mock.ExpectQuery(`FROM look_feel_templates\s+ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(lookFeelCols).
			AddRow(uuid.NewString(), "Dark", "#000000", "#ffffff", "", "Arial", now, now).
			AddRow(uuid.NewString(), "Light", "#ffffff", "#000000", "https://x/logo.png", "Georgia", now, now))

	got, err := NewLookAndFeelStore(db).List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[1].LogoURL != "https://x/logo.png" {
		t.Errorf("List = %+v", got)
	}
}

func TestLookAndFeelCreate(t *testing.T) {
	l := &models.LookAndFeel{Name: "Brand", BrandColor: "#0a84ff", AccentColor: "#ff9500"}
	l.Validate()

	t.Run("ok", func(t *testing.T) {
		db, mock := mockDB(t)
		now := time.Now()
		id := uuid.New()
		mock.ExpectQuery(`INSERT INTO look_feel_templates`).
			WithArgs("Brand", "#0a84ff", "#ff9500", "", models.DefaultFontFamily).
			WillReturnRows(sqlmock.NewRows(lookFeelCols).
				AddRow(id.String(), "Brand", "#0a84ff", "#ff9500", "", models.DefaultFontFamily, now, now))

		got, err := NewLookAndFeelStore(db).Create(l)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if got.ID != id {
			t.Errorf("ID = %v", got.ID)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectQuery(`INSERT INTO look_feel_templates`).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		if _, err := NewLookAndFeelStore(db).Create(l); !errors.Is(err, ErrDuplicateName) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestLookAndFeelDeleteMissing(t *testing.T) {
	db, mock := mockDB(t)
	id := uuid.New()
	mock.ExpectExec(`DELETE FROM look_feel_templates`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewLookAndFeelStore(db).Delete(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
