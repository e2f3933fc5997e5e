package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/capstone-dashboard-api/internal/models"
	"github.com/noah-isme/capstone-dashboard-api/internal/peerreview"
	"github.com/noah-isme/capstone-dashboard-api/internal/repository"
	"github.com/noah-isme/capstone-dashboard-api/internal/tabular"
)

const testCourse = "cmput401"

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func setupStore(t *testing.T) repository.Store {
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
	store := repository.NewStore(db)
	require.NoError(t, store.Repositories().Courses.Create(context.Background(), &models.Course{Name: testCourse}))
	return store
}

type archiveStub struct {
	mu    sync.Mutex
	names []string
	fail  bool
}

func (a *archiveStub) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return "", fmt.Errorf("archive unavailable")
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	a.names = append(a.names, name)
	return "https://archive.example.com/" + name, nil
}

type publisherStub struct {
	mu     sync.Mutex
	events []IngestionEvent
}

func (p *publisherStub) PublishIngestion(ctx context.Context, event IngestionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"file\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content) + 1024))
	require.NoError(t, err)
	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func csvBytes(t *testing.T, header []string, rows ...[]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, tabular.WriteCSV(&buf, tabular.New(header, rows)))
	return buf.Bytes()
}

func rosterCSV(t *testing.T) []byte {
	layout := peerreview.RosterLayout{Survey: peerreview.DefaultSurveyColumns}
	return csvBytes(t, layout.Header(),
		[]string{"aardvark@ualberta.ca", "Aardvark", "aardvark-gh", "Zoo", "zoo-repo", "Ta One", "CMPUT 301"},
		[]string{"tiger@ualberta.ca", "Tiger", "tiger-gh", "Zoo", "zoo-repo", "Ta One", ""},
	)
}

// sprintCSV holds one submission from aardvark rating themself and tiger,
// plus a blank trailing row.
func sprintCSV(t *testing.T) []byte {
	layout := peerreview.DefaultSprintLayout()
	header := layout.Header()[:len(layout.Header())-2-3]

	row := []string{"1", "aardvark@ualberta.ca", "Zoo"}
	for range layout.Reflection {
		row = append(row, "answer")
	}
	row = append(row,
		"aardvark@ualberta.ca - Aardvark", "did ok", "fine",
		"Tiger - tiger@ualberta.ca", "most valuable team member", "great",
	)
	return csvBytes(t, header, row, []string{"2"})
}

func newValidator() *validator.Validate {
	return validator.New()
}
