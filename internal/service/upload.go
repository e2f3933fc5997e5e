package service

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/noah-isme/capstone-dashboard-api/internal/tabular"
)

const (
	mimeCSV      = "text/csv"
	mimeWorkbook = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// uploadedFile is a validated upload held in memory.
type uploadedFile struct {
	Name     string
	Stored   string
	Data     []byte
	MimeType string
	Checksum string
}

// readUpload loads the file, enforcing the size limit and the allowed types.
func readUpload(file *multipart.FileHeader, maxSize int64) (uploadedFile, error) {
	if file == nil {
		return uploadedFile{}, ErrUploadRequired
	}
	if file.Size > maxSize {
		return uploadedFile{}, ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return uploadedFile{}, fmt.Errorf("open upload: %w", err)
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, maxSize+1)); err != nil {
		return uploadedFile{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(buf.Len()) > maxSize {
		return uploadedFile{}, ErrUploadTooLarge
	}

	fileType := normalizeMime(mimetype.Detect(buf.Bytes()).String())
	if fileType == "" {
		return uploadedFile{}, ErrUploadTypeNotAllowed
	}
	if fileType == mimeWorkbook {
		if err := scanWorkbook(buf.Bytes(), maxSize); err != nil {
			return uploadedFile{}, err
		}
	}

	checksum := sha256.Sum256(buf.Bytes())
	return uploadedFile{
		Name:     strings.TrimSpace(file.Filename),
		Stored:   sanitizeFileName(file.Filename, fileType),
		Data:     buf.Bytes(),
		MimeType: fileType,
		Checksum: hex.EncodeToString(checksum[:]),
	}, nil
}

// table parses the upload as CSV or as the first sheet of a workbook.
func (f uploadedFile) table(expect ...tabular.Expect) (tabular.Table, error) {
	var (
		t   tabular.Table
		err error
	)
	if f.MimeType == mimeWorkbook {
		t, err = tabular.ReadWorkbook(bytes.NewReader(f.Data), "", expect...)
	} else {
		t, err = tabular.ReadCSV(bytes.NewReader(f.Data), expect...)
	}
	if err == nil {
		return t, nil
	}

	var columnErr *tabular.ColumnError
	if errors.As(err, &columnErr) || errors.Is(err, tabular.ErrNoHeader) {
		return tabular.Table{}, err
	}
	return tabular.Table{}, fmt.Errorf("%w: %v", ErrUploadUnreadable, err)
}

// scanWorkbook rejects archives that would expand far beyond the upload limit.
func scanWorkbook(payload []byte, maxSize int64) error {
	reader, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadUnreadable, err)
	}
	var total uint64
	for _, f := range reader.File {
		total += f.UncompressedSize64
		if total > uint64(maxSize*20) {
			return fmt.Errorf("%w: workbook expands beyond allowed size", ErrUploadTooLarge)
		}
	}
	return nil
}

// normalizeMime maps a detected type to mimeCSV or mimeWorkbook, or "" when
// the type is not accepted. Plain text is read as CSV since detection only
// recognises CSV when every row has the same width.
func normalizeMime(m string) string {
	lower := strings.ToLower(strings.TrimSpace(m))
	if i := strings.Index(lower, ";"); i >= 0 {
		lower = strings.TrimSpace(lower[:i])
	}
	switch lower {
	case mimeCSV, "text/plain":
		return mimeCSV
	case mimeWorkbook:
		return mimeWorkbook
	default:
		return ""
	}
}

func sanitizeFileName(name, mimeType string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}
	if mimeType == mimeWorkbook {
		return base + ".xlsx"
	}
	return base + ".csv"
}
