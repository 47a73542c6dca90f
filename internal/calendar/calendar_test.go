package calendar

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizutama/koyomi/internal/datekey"
	"github.com/mizutama/koyomi/internal/models"
	"github.com/mizutama/koyomi/internal/store"
)

func TestBuild_EventsPerYear(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	data, err := Build([]models.Character{
		{ID: "abc", Name: "Holo", Birthday: "07-07"},
	}, now)
	require.NoError(t, err)

	ics := string(data)
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Contains(t, ics, "SUMMARY:Holo 🎂")
	// One all-day event for each of the previous, current, and next year.
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20240707")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20250707")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20260707")
	assert.Contains(t, ics, "UID:abc-2025@koyomi.local")
}

func TestBuild_LeapDayClampsToFeb28(t *testing.T) {
	// 2024 is a leap year, 2023 and 2025 are not.
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	data, err := Build([]models.Character{
		{ID: "leap", Name: "Bisco", Birthday: "02-29"},
	}, now)
	require.NoError(t, err)

	ics := string(data)
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20240229")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20230228")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20250228")
	assert.NotContains(t, ics, "20230301")
	assert.NotContains(t, ics, "20250301")
}

func TestBuild_EmptyRegistryStillValid(t *testing.T) {
	data, err := Build(nil, time.Now())
	require.NoError(t, err)
	assert.Contains(t, string(data), "BEGIN:VCALENDAR")
	assert.Contains(t, string(data), "END:VCALENDAR")
}

func TestFeed_ServesAndRevalidates(t *testing.T) {
	f, err := os.CreateTemp("", "koyomi-cal-test-*.db")
	require.NoError(t, err)
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })
	db, err := store.Open(f.Name())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.CreateCharacter(models.Character{Name: "Holo", Birthday: "07-07"})
	require.NoError(t, err)

	clock := datekey.FixedClock{T: time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local)}
	feed := NewFeed(db, clock)

	rec := httptest.NewRecorder()
	feed.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/calendar.ics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Holo")
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	// Conditional request with the same ETag gets a 304.
	req := httptest.NewRequest(http.MethodGet, "/calendar.ics", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	feed.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	// A mutation plus refresh changes the ETag.
	_, err = db.CreateCharacter(models.Character{Name: "Kyon", Birthday: "12-31"})
	require.NoError(t, err)
	require.NoError(t, feed.Refresh())

	rec = httptest.NewRecorder()
	feed.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, etag, rec.Header().Get("ETag"))
}
