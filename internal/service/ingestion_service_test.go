package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/capstone-dashboard-api/internal/models"
	"github.com/noah-isme/capstone-dashboard-api/internal/repository"
)

func TestIngestionServiceRosterUploadIsIdempotent(t *testing.T) {
	store := setupStore(t)
	mini := miniredis.RunT(t)
	cache := NewStudentCache(redis.NewClient(&redis.Options{Addr: mini.Addr()}), 0, testLogger())
	archive := &archiveStub{}
	events := &publisherStub{}
	svc := NewIngestionService(store, IngestionOptions{Archive: archive, Events: events, Cache: cache}, testLogger())
	ctx := context.Background()

	cache.Set(ctx, testCourse, 0, []string{"stale"})
	require.True(t, mini.Exists("students:cmput401:0"))

	for i := 0; i < 2; i++ {
		resp, err := svc.UploadRoster(ctx, testCourse, buildFileHeader(t, "Roster 2026.csv", rosterCSV(t)))
		require.NoError(t, err)
		require.Equal(t, 2, resp.Records)
		require.Equal(t, models.IngestionKindRoster, resp.Kind)
		require.Empty(t, resp.Warnings)
		require.Contains(t, resp.ArchiveURL, "roster-2026.csv")
	}
	require.False(t, mini.Exists("students:cmput401:0"))

	repos := store.Repositories()
	students, err := repos.Students.FindByCourse(ctx, testCourse)
	require.NoError(t, err)
	require.Len(t, students, 2)
	require.Equal(t, "CMPUT 301", students[0].ExperienceSurvey["course_work"])

	course, err := repos.Courses.Get(ctx, testCourse)
	require.NoError(t, err)
	require.Equal(t, "Roster 2026.csv", course.RosterFileName)

	history, err := svc.History(ctx, testCourse)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Len(t, archive.names, 2)
	require.Len(t, events.events, 2)
	require.Equal(t, testCourse, events.events[0].Course)
}

func TestIngestionServiceSprintUpload(t *testing.T) {
	store := setupStore(t)
	events := &publisherStub{}
	svc := NewIngestionService(store, IngestionOptions{Events: events, Archive: &archiveStub{fail: true}}, testLogger())
	ctx := context.Background()

	resp, err := svc.UploadSprint(ctx, testCourse, 2, buildFileHeader(t, "sprint2.csv", sprintCSV(t)))
	require.NoError(t, err)
	require.Equal(t, 2, resp.Records)
	require.Empty(t, resp.ArchiveURL)

	repos := store.Repositories()
	records, err := repos.SprintRecords.Find(ctx, testCourse, repository.SprintFilter{Sprint: 2})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "aardvark@ualberta.ca", records[0].Email)
	require.Equal(t, testCourse, records[0].CourseName)
	require.Equal(t, "tiger@ualberta.ca", records[1].Email)
	require.Equal(t, models.NotSubmittedSentinel, records[1].PersonalPeerRev["meeting_content"])
	require.InDelta(t, 4.0, records[1].AvgRating, 1e-9)

	sprints, err := repos.Courses.ListSprints(ctx, testCourse)
	require.NoError(t, err)
	require.Len(t, sprints, 1)
	require.Equal(t, "sprint2.csv", sprints[0].SprintFileName)
	require.Len(t, events.events, 1)
	require.Equal(t, 2, events.events[0].Sprint)
}

func TestIngestionServiceRejections(t *testing.T) {
	store := setupStore(t)
	svc := NewIngestionService(store, IngestionOptions{MaxBytes: 4096}, testLogger())
	ctx := context.Background()

	_, err := svc.UploadRoster(ctx, "missing", buildFileHeader(t, "r.csv", rosterCSV(t)))
	require.ErrorIs(t, err, ErrCourseNotFound)

	_, err = svc.UploadSprint(ctx, testCourse, -1, buildFileHeader(t, "s.csv", sprintCSV(t)))
	require.ErrorIs(t, err, ErrInvalidSprint)

	_, err = svc.UploadRoster(ctx, testCourse, nil)
	require.ErrorIs(t, err, ErrUploadRequired)

	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	_, err = svc.UploadRoster(ctx, testCourse, buildFileHeader(t, "r.png", png))
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)

	_, err = svc.UploadRoster(ctx, testCourse, buildFileHeader(t, "big.csv", bytes.Repeat([]byte("a,b\n"), 2048)))
	require.ErrorIs(t, err, ErrUploadTooLarge)

	_, err = svc.UploadRoster(ctx, testCourse, buildFileHeader(t, "r.csv", []byte("Email Address,Full name (preferred)\n,Alice\n")))
	require.True(t, IsDataError(err))

	_, err = svc.UploadRoster(ctx, testCourse, buildFileHeader(t, "empty.csv", []byte{}))
	require.True(t, IsDataError(err))

	history, err := svc.History(ctx, testCourse)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestIngestionServiceRejectsSprintWithoutEmailColumn(t *testing.T) {
	store := setupStore(t)
	svc := NewIngestionService(store, IngestionOptions{}, testLogger())

	_, err := svc.UploadSprint(context.Background(), testCourse, 1, buildFileHeader(t, "s.csv", []byte("Timestamp\n1\n")))
	require.True(t, IsDataError(err))
}
