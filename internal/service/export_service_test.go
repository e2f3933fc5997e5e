package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/capstone-dashboard-api/internal/peerreview"
	"github.com/noah-isme/capstone-dashboard-api/internal/repository"
	"github.com/noah-isme/capstone-dashboard-api/internal/tabular"
)

func TestExportServiceSprintReimportsToSameRecords(t *testing.T) {
	store := setupStore(t)
	ingestion := NewIngestionService(store, IngestionOptions{}, testLogger())
	seedCourse(t, ingestion)
	svc := NewExportService(store.Repositories(), testLogger())
	ctx := context.Background()

	file, err := svc.Sprint(ctx, testCourse, 1, peerreview.ViewGiven)
	require.NoError(t, err)
	require.Equal(t, "cmput401_sprint_1.csv", file.FileName)
	require.Equal(t, ContentTypeCSV, file.ContentType)

	table, err := tabular.ReadCSV(bytes.NewReader(file.Body))
	require.NoError(t, err)
	require.Equal(t, peerreview.DefaultSprintLayout().Header(), table.Header)
	require.Len(t, table.Rows, 2)
	require.Equal(t, "Zoo", table.Rows[0].Cell(2))

	_, err = ingestion.UploadSprint(ctx, testCourse, 3, buildFileHeader(t, file.FileName, file.Body))
	require.NoError(t, err)

	records := store.Repositories().SprintRecords
	original, err := records.Find(ctx, testCourse, repository.SprintFilter{Sprint: 1})
	require.NoError(t, err)
	reimported, err := records.Find(ctx, testCourse, repository.SprintFilter{Sprint: 3})
	require.NoError(t, err)
	require.Len(t, reimported, len(original))
	for i := range original {
		require.Equal(t, original[i].Email, reimported[i].Email)
		require.Equal(t, original[i].PersonalPeerRev, reimported[i].PersonalPeerRev)
		require.Equal(t, original[i].ReceivedPeerRevs, reimported[i].ReceivedPeerRevs)
		require.Equal(t, original[i].AvgRating, reimported[i].AvgRating)
		require.Equal(t, original[i].StddevRating, reimported[i].StddevRating)
	}
}

func TestExportServiceRosterAndWorkbook(t *testing.T) {
	store := setupStore(t)
	seedCourse(t, NewIngestionService(store, IngestionOptions{}, testLogger()))
	svc := NewExportService(store.Repositories(), testLogger())
	ctx := context.Background()

	roster, err := svc.Roster(ctx, testCourse)
	require.NoError(t, err)
	require.Equal(t, "cmput401_roster.csv", roster.FileName)
	table, err := tabular.ReadCSV(bytes.NewReader(roster.Body))
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	require.Equal(t, "aardvark@ualberta.ca", table.Rows[0].Cell(0))

	workbook, err := svc.Workbook(ctx, testCourse)
	require.NoError(t, err)
	require.Equal(t, "cmput401_all.xlsx", workbook.FileName)

	rosterSheet, err := tabular.ReadWorkbook(bytes.NewReader(workbook.Body), "Roster")
	require.NoError(t, err)
	require.Len(t, rosterSheet.Rows, 2)

	sprintSheet, err := tabular.ReadWorkbook(bytes.NewReader(workbook.Body), "Sprint 1")
	require.NoError(t, err)
	require.Len(t, sprintSheet.Rows, 2)
	require.Equal(t, "tiger@ualberta.ca", sprintSheet.Rows[1].Cell(1))
}

func TestExportServiceErrors(t *testing.T) {
	svc := NewExportService(setupStore(t).Repositories(), testLogger())
	ctx := context.Background()

	_, err := svc.Roster(ctx, "missing")
	require.ErrorIs(t, err, ErrCourseNotFound)

	_, err = svc.Sprint(ctx, testCourse, 0, peerreview.ViewGiven)
	require.ErrorIs(t, err, ErrInvalidSprint)

	empty, err := svc.Sprint(ctx, testCourse, 4, peerreview.ViewReceived)
	require.NoError(t, err)
	table, err := tabular.ReadCSV(bytes.NewReader(empty.Body))
	require.NoError(t, err)
	require.Empty(t, table.Rows)
}
