package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/capstone-dashboard-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Course{},
		&models.Sprint{},
		&models.Student{},
		&models.StudentSprintRecord{},
		&models.IngestionLog{},
	))
	return db
}

func rating(v float64) *float64 {
	return &v
}

func TestStudentUpsertIsIdempotent(t *testing.T) {
	repo := NewStudentRepository(setupTestDB(t))
	ctx := context.Background()

	roster := func() []models.Student {
		return []models.Student{
			{CourseName: "cmput401", Email: "a@x.com", FullName: "Alice", ExperienceSurvey: map[string]string{"langs": "go"}},
			{CourseName: "cmput401", Email: "b@x.com", FullName: "Bob"},
		}
	}

	_, err := repo.Upsert(ctx, roster())
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, roster())
	require.NoError(t, err)

	students, err := repo.FindByCourse(ctx, "cmput401")
	require.NoError(t, err)
	require.Len(t, students, 2)
	require.Equal(t, "go", students[0].ExperienceSurvey["langs"])

	changed := roster()[:1]
	changed[0].Project = "Paint"
	_, err = repo.Upsert(ctx, changed)
	require.NoError(t, err)

	alice, err := repo.FindByEmail(ctx, "cmput401", "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "Paint", alice.Project)

	_, err = repo.FindByEmail(ctx, "other", "a@x.com")
	require.True(t, IsNotFound(err))
}

func TestSprintRecordUpsertAndFind(t *testing.T) {
	repo := NewSprintRecordRepository(setupTestDB(t))
	ctx := context.Background()

	first := []models.StudentSprintRecord{
		{CourseName: "c", Email: "a@x.com", Sprint: 1, PersonalPeerRev: map[string]string{"k": "v1"},
			ReceivedPeerRevs: models.ReceivedReviews{"b@x.com": {Rating: rating(3), WhatDidTheyDo: "ok"}}, AvgRating: 3},
		{CourseName: "c", Email: "a@x.com", Sprint: 2, PersonalPeerRev: map[string]string{"k": "s2"}, ReceivedPeerRevs: models.ReceivedReviews{}},
		{CourseName: "c", Email: "b@x.com", Sprint: 1, PersonalPeerRev: map[string]string{"k": "b"}, ReceivedPeerRevs: models.ReceivedReviews{}},
	}
	_, err := repo.Upsert(ctx, first)
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, []models.StudentSprintRecord{
		{CourseName: "c", Email: "a@x.com", Sprint: 1, PersonalPeerRev: map[string]string{"k": "v2"}, ReceivedPeerRevs: models.ReceivedReviews{}},
	})
	require.NoError(t, err)

	all, err := repo.Find(ctx, "c", SprintFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	sprintOne, err := repo.Find(ctx, "c", SprintFilter{Sprint: 1})
	require.NoError(t, err)
	require.Len(t, sprintOne, 2)

	alice, err := repo.Find(ctx, "c", SprintFilter{Sprint: 1, Email: "a@x.com"})
	require.NoError(t, err)
	require.Len(t, alice, 1)
	require.Equal(t, "v2", alice[0].PersonalPeerRev["k"])
	require.Empty(t, alice[0].ReceivedPeerRevs)
	require.Equal(t, 0.0, alice[0].AvgRating)
}

func TestCourseRepositorySprintMetadata(t *testing.T) {
	db := setupTestDB(t)
	courses := NewCourseRepository(db)
	records := NewSprintRecordRepository(db)
	ctx := context.Background()

	require.NoError(t, courses.Create(ctx, &models.Course{Name: "c"}))
	exists, err := courses.Exists(ctx, "c")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, courses.SetRosterFileName(ctx, "c", "roster.csv"))
	require.True(t, IsNotFound(courses.SetRosterFileName(ctx, "missing", "roster.csv")))

	require.NoError(t, courses.CreateSprint(ctx, &models.Sprint{CourseName: "c", SprintNumber: 3, FormsURL: "https://forms"}))
	require.NoError(t, courses.SetSprintFileName(ctx, "c", 3, "s3.csv"))
	require.NoError(t, courses.SetSprintFileName(ctx, "c", 1, "s1.csv"))

	sprints, err := courses.ListSprints(ctx, "c")
	require.NoError(t, err)
	require.Len(t, sprints, 2)
	require.Equal(t, 1, sprints[0].SprintNumber)
	require.Equal(t, "s3.csv", sprints[1].SprintFileName)
	require.Equal(t, "https://forms", sprints[1].FormsURL)

	_, err = records.Upsert(ctx, []models.StudentSprintRecord{{CourseName: "c", Email: "a@x.com", Sprint: 2}})
	require.NoError(t, err)

	numbers, err := courses.SprintNumbers(ctx, "c")
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, numbers)

	course, err := courses.Get(ctx, "c")
	require.NoError(t, err)
	require.Equal(t, "roster.csv", course.RosterFileName)

	require.NoError(t, courses.Delete(ctx, "c"))
	require.True(t, IsNotFound(courses.Delete(ctx, "c")))
	left, err := records.Find(ctx, "c", SprintFilter{})
	require.NoError(t, err)
	require.Empty(t, left)
}

func TestStoreTransactionRollsBack(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	err := store.Transaction(ctx, func(repos Repositories) error {
		if _, err := repos.Students.Upsert(ctx, []models.Student{{CourseName: "c", Email: "a@x.com"}}); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.EqualError(t, err, "abort")

	students, err := store.Repositories().Students.FindByCourse(ctx, "c")
	require.NoError(t, err)
	require.Empty(t, students)
}

func TestIngestionLogListNewestFirst(t *testing.T) {
	repo := NewIngestionLogRepository(setupTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"roster.csv", "sprint1.csv"} {
		require.NoError(t, repo.Create(ctx, &models.IngestionLog{
			CourseName: "c",
			Kind:       models.IngestionKindRoster,
			FileName:   name,
			Metadata:   datatypes.JSONMap{"warnings": []string{"column renamed"}},
		}))
	}

	entries, err := repo.List(ctx, "c")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "sprint1.csv", entries[0].FileName)
	require.Len(t, entries[0].Metadata["warnings"], 1)
}
