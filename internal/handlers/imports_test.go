package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"vira-api/pkg/importer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportsHandler_UploadExcel(t *testing.T) {
	// Create a mock handler (without real database for unit tests)
	handler := &ImportsHandler{
		DB:         nil, // Will be nil for unit tests
		MaxBytes:   20 << 20,
		DefaultMap: "configs/mapping/vira_directory.yaml",
	}

	t.Run("Rejects non-multipart content type", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/imports/excel", nil)
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		handler.UploadExcel(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "content-type must be multipart/form-data")
	})

	t.Run("Rejects missing file", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		writer.Close()

		req := httptest.NewRequest("POST", "/imports/excel", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		w := httptest.NewRecorder()
		handler.UploadExcel(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "file is required")
	})

	t.Run("Rejects non-xlsx file", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)

		fileWriter, _ := writer.CreateFormFile("file", "vendors.xls")
		fileWriter.Write([]byte("fake excel content"))
		writer.Close()

		req := httptest.NewRequest("POST", "/imports/excel", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		w := httptest.NewRecorder()
		handler.UploadExcel(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "only .xlsx files are accepted")
	})

	t.Run("Accepts valid xlsx file", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		writer.WriteField("dry_run", "true")

		fileWriter, _ := writer.CreateFormFile("file", "vendors.xlsx")
		fileWriter.Write([]byte("fake excel content"))
		writer.Close()

		req := httptest.NewRequest("POST", "/imports/excel", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		w := httptest.NewRecorder()
		handler.UploadExcel(w, req)

		// Fails on the garbage workbook, not on request validation
		assert.NotEqual(t, http.StatusBadRequest, w.Code)
	})
}

func TestIsXLSX(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected bool
	}{
		{"Valid xlsx", "vendors.xlsx", true},
		{"Valid xlsx uppercase", "VENDORS.XLSX", true},
		{"Valid xlsx mixed case", "Vendors.XlSx", true},
		{"Invalid xls", "vendors.xls", false},
		{"Invalid xlsm", "vendors.xlsm", false},
		{"Invalid txt", "vendors.txt", false},
		{"No extension", "vendors", false},
		{"Empty filename", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := &multipart.FileHeader{
				Filename: tt.filename,
			}
			assert.Equal(t, tt.expected, isXLSX(header))
		})
	}
}

func TestWriteJSON(t *testing.T) {
	t.Run("Writes JSON response", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]interface{}{
			"message": "test",
			"count":   42,
		}

		writeJSON(w, http.StatusOK, data)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		assert.Equal(t, "test", response["message"])
		assert.Equal(t, float64(42), response["count"])
	})
}

func TestImportSummaryShape(t *testing.T) {
	summary := importer.ImportSummary{
		Inserted: 15,
		Updated:  8,
		Skipped:  3,
		Errors:   2,
		Sheets: []importer.SheetSummary{
			{Name: "Vendors", Inserted: 15, Updated: 8, Skipped: 3, Errors: 2},
		},
		DryRun: true,
	}

	data, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"dry_run":true`)
	assert.Contains(t, string(data), `"Vendors"`)
}
