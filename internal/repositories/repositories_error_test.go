package repositories

import (
	"errors"
	"testing"

	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/shared"
)

func TestUserRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			user := models.NewUser(0, models.UserProfile{ID: "  "})
			if err := NewUserRepository(db).Create(user); err == nil {
				t.Fatal("expected validation error for empty spotify id")
			}
		})

		t.Run("DuplicateSpotifyID", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewUserRepository(db)
			if err := repo.Create(models.NewUser(0, profile("alice"))); err != nil {
				t.Fatalf("failed to create first user: %v", err)
			}

			if err := repo.Create(models.NewUser(0, profile("alice"))); err == nil {
				t.Fatal("expected error when creating user with duplicate spotify id")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			_, err := NewUserRepository(db).Get("nonexistent-id")
			if !errors.Is(err, shared.ErrRecordNotFound) {
				t.Fatalf("expected ErrRecordNotFound, got %v", err)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			user := models.NewUser(0, profile("alice"))
			user.SetID("nonexistent-id")

			if err := NewUserRepository(db).Update(user); !errors.Is(err, shared.ErrRecordNotFound) {
				t.Fatalf("expected ErrRecordNotFound, got %v", err)
			}
		})

		t.Run("Deleted", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewUserRepository(db)
			user := models.NewUser(0, profile("alice"))
			if err := repo.Create(user); err != nil {
				t.Fatalf("failed to create user: %v", err)
			}
			if err := repo.Delete(user.ID()); err != nil {
				t.Fatalf("failed to delete user: %v", err)
			}

			if err := repo.Update(user); err == nil {
				t.Fatal("expected error when updating deleted user")
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("AlreadyDeleted", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewUserRepository(db)
			user := models.NewUser(0, profile("alice"))
			if err := repo.Create(user); err != nil {
				t.Fatalf("failed to create user: %v", err)
			}
			if err := repo.Delete(user.ID()); err != nil {
				t.Fatalf("failed to delete user: %v", err)
			}

			if err := repo.Delete(user.ID()); err == nil {
				t.Fatal("expected error when deleting already deleted user")
			}
		})
	})
}

func TestMoodRequestRepositoryErrors(t *testing.T) {
	t.Run("ValidationError", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		req := models.NewMoodRequest("   ", models.UnknownIntent(), "", "")
		if err := NewMoodRequestRepository(db).Create(req); err == nil {
			t.Fatal("expected validation error for empty message")
		}
	})

	t.Run("InvalidUserID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		req := models.NewMoodRequest("play hurt", models.UnknownIntent(), "", "")
		req.UserID = "nonexistent-user"
		if err := NewMoodRequestRepository(db).Create(req); err == nil {
			t.Fatal("expected foreign key error for unknown user")
		}
	})

	t.Run("Delete NotFound", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if err := NewMoodRequestRepository(db).Delete("nonexistent-id"); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Fatalf("expected ErrRecordNotFound, got %v", err)
		}
	})
}

func TestPlaylistRepositoryErrors(t *testing.T) {
	t.Run("DuplicateNameIgnoringCase", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		if err := repo.Create(models.NewConnectedPlaylist("Focus", "spotify:playlist:a")); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}
		if err := repo.Create(models.NewConnectedPlaylist("FOCUS", "spotify:playlist:b")); err == nil {
			t.Fatal("expected error when connecting the same name twice")
		}
	})

	t.Run("InvalidURI", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if err := NewPlaylistRepository(db).Create(models.NewConnectedPlaylist("Focus", "spotify:album:a")); err == nil {
			t.Fatal("expected validation error for non-playlist uri")
		}
	})

	t.Run("NotFound errors", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		if _, err := repo.Get("nonexistent-id"); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("Get: expected ErrRecordNotFound, got %v", err)
		}

		p := models.NewConnectedPlaylist("Focus", "spotify:playlist:a")
		p.SetID("nonexistent-id")
		if err := repo.Update(p); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("Update: expected ErrRecordNotFound, got %v", err)
		}
		if err := repo.Delete("nonexistent-id"); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("Delete: expected ErrRecordNotFound, got %v", err)
		}
	})
}

func TestTrackHistoryRepositoryErrors(t *testing.T) {
	t.Run("ValidationError", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		play := models.NewTrackPlay("", models.Track{Name: "No ID"}, "track")
		if err := NewTrackHistoryRepository(db).Create(play); err == nil {
			t.Fatal("expected validation error for missing track id")
		}
	})

	t.Run("Get NotFound", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, err := NewTrackHistoryRepository(db).Get("nonexistent-id"); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Fatalf("expected ErrRecordNotFound, got %v", err)
		}
	})
}
