package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tealeg/xlsx/v3"
	"gopkg.in/yaml.v3"
)

// ImportOptions defines the configuration for Excel import operations
type ImportOptions struct {
	MappingPath string // default "configs/mapping/vira_directory.yaml"
	DryRun      bool
	MaxErrors   int // default 50
}

// RowError represents an error that occurred during row processing
type RowError struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// SheetSummary contains the import statistics for a single sheet
type SheetSummary struct {
	Name     string     `json:"name"`
	Inserted int        `json:"inserted"`
	Updated  int        `json:"updated"`
	Skipped  int        `json:"skipped"`
	Errors   int        `json:"errors"`
	Samples  []RowError `json:"error_samples,omitempty"`
}

// ImportSummary contains the overall import statistics
type ImportSummary struct {
	Inserted int            `json:"inserted"`
	Updated  int            `json:"updated"`
	Skipped  int            `json:"skipped"`
	Errors   int            `json:"errors"`
	Sheets   []SheetSummary `json:"sheets"`
	DryRun   bool           `json:"dry_run"`
}

// MappingConfig represents the YAML mapping configuration
type MappingConfig struct {
	Version int                    `yaml:"version"`
	Sheets  map[string]SheetConfig `yaml:"sheets"`
}

// SheetConfig maps one worksheet onto one table. NaturalKey is the
// field used to detect existing rows; Columns maps header names to
// destination fields.
type SheetConfig struct {
	Table      string                  `yaml:"table"`
	NaturalKey string                  `yaml:"natural_key"`
	Aliases    map[string][]string     `yaml:"aliases"`
	Columns    map[string]ColumnConfig `yaml:"columns"`
}

type ColumnConfig struct {
	Field string `yaml:"field"`
	Type  string `yaml:"type"`
}

// ImportExcel reads vendor and client sheets from an Excel workbook
// and upserts them into the database.
func ImportExcel(ctx context.Context, db *pgxpool.Pool, r io.Reader, opts ImportOptions) (ImportSummary, error) {
	summary := ImportSummary{
		DryRun: opts.DryRun,
		Sheets: []SheetSummary{},
	}

	if opts.MaxErrors == 0 {
		opts.MaxErrors = 50
	}

	mapping, err := loadMappingConfig(opts.MappingPath)
	if err != nil {
		return summary, fmt.Errorf("failed to load mapping config: %w", err)
	}

	// xlsx needs an io.ReaderAt, so buffer the upload
	data, err := io.ReadAll(r)
	if err != nil {
		return summary, fmt.Errorf("failed to read Excel file: %w", err)
	}

	xlFile, err := xlsx.OpenBinary(data)
	if err != nil {
		return summary, fmt.Errorf("failed to open Excel file: %w", err)
	}

	conn, err := db.Acquire(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Release()

	for _, sheet := range xlFile.Sheets {
		sheetConfig, exists := mapping.Sheets[sheet.Name]
		if !exists {
			continue // Skip sheets without mapping
		}

		sheetSummary := processSheet(ctx, conn, sheet, sheetConfig, opts)
		summary.Sheets = append(summary.Sheets, sheetSummary)

		summary.Inserted += sheetSummary.Inserted
		summary.Updated += sheetSummary.Updated
		summary.Skipped += sheetSummary.Skipped
		summary.Errors += sheetSummary.Errors

		if summary.Errors > opts.MaxErrors {
			return summary, fmt.Errorf("too many errors (%d), stopping import", summary.Errors)
		}
	}

	return summary, nil
}

// loadMappingConfig reads the YAML mapping, falling back to the
// built-in vendor/client mapping when no path is given or the file is
// absent.
func loadMappingConfig(path string) (*MappingConfig, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			var cfg MappingConfig
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
			return &cfg, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return defaultMappingConfig(), nil
}

func defaultMappingConfig() *MappingConfig {
	return &MappingConfig{
		Version: 1,
		Sheets: map[string]SheetConfig{
			"Vendors": {
				Table:      "vendors",
				NaturalKey: "name",
				Aliases: map[string][]string{
					"Name":         {"Vendor", "Vendor Name"},
					"ContactEmail": {"Email", "Contact Email"},
					"Services":     {"Service", "Offerings"},
				},
				Columns: map[string]ColumnConfig{
					"Name":         {Field: "name", Type: "TEXT"},
					"Location":     {Field: "location", Type: "TEXT?"},
					"Services":     {Field: "services", Type: "LIST?"},
					"ContactEmail": {Field: "contact_email", Type: "TEXT?"},
					"Notes":        {Field: "notes", Type: "TEXT?"},
				},
			},
			"Clients": {
				Table:      "clients",
				NaturalKey: "name",
				Aliases: map[string][]string{
					"Name":          {"Client", "Client Name", "Company"},
					"ContactPerson": {"Contact", "Contact Person"},
					"ContactEmail":  {"Email", "Contact Email"},
				},
				Columns: map[string]ColumnConfig{
					"Name":          {Field: "name", Type: "TEXT"},
					"ContactPerson": {Field: "contact_person", Type: "TEXT?"},
					"ContactEmail":  {Field: "contact_email", Type: "TEXT?"},
					"Industry":      {Field: "industry", Type: "TEXT?"},
					"Notes":         {Field: "notes", Type: "TEXT?"},
				},
			},
		},
	}
}

func processSheet(ctx context.Context, conn *pgxpool.Conn, sheet *xlsx.Sheet, config SheetConfig, opts ImportOptions) SheetSummary {
	summary := SheetSummary{Name: sheet.Name}

	headerRow, err := sheet.Row(0)
	if err != nil {
		summary.Errors++
		summary.Samples = append(summary.Samples, RowError{
			Sheet:   sheet.Name,
			Row:     1,
			Message: "Failed to read header row: " + err.Error(),
		})
		return summary
	}

	// Map column index -> canonical header name, honoring aliases
	colToHeader := map[int]string{}
	colIdx := 0
	for {
		cell := headerRow.GetCell(colIdx)
		if cell == nil {
			break
		}
		headerName := strings.TrimSpace(cell.String())
		if headerName == "" {
			colIdx++
			continue
		}
		colToHeader[colIdx] = canonicalHeader(headerName, config)
		colIdx++
	}

	rowIdx := 1
	for {
		row, err := sheet.Row(rowIdx)
		if err != nil {
			break // No more rows
		}

		rowData := map[string]string{}
		colIdx := 0
		for {
			cell := row.GetCell(colIdx)
			if cell == nil {
				break
			}
			value := strings.TrimSpace(cell.String())
			if value != "" {
				if header, ok := colToHeader[colIdx]; ok {
					rowData[header] = value
				}
			}
			colIdx++
		}

		if len(rowData) == 0 {
			summary.Skipped++
			rowIdx++
			continue
		}

		record, err := buildRecord(rowData, config)
		if err != nil {
			summary.recordError(sheet.Name, rowIdx+1, err)
			rowIdx++
			continue
		}

		keyValue, ok := record[config.NaturalKey].(string)
		if !ok || keyValue == "" {
			summary.recordError(sheet.Name, rowIdx+1, fmt.Errorf("missing %s", config.NaturalKey))
			rowIdx++
			continue
		}

		existingID, err := findExisting(ctx, conn, config, keyValue)
		if err != nil {
			summary.recordError(sheet.Name, rowIdx+1, err)
			rowIdx++
			continue
		}

		if existingID != "" {
			if !opts.DryRun {
				if err := updateRecord(ctx, conn, config, existingID, record); err != nil {
					summary.recordError(sheet.Name, rowIdx+1, err)
					rowIdx++
					continue
				}
			}
			summary.Updated++
		} else {
			if !opts.DryRun {
				if err := insertRecord(ctx, conn, config, record); err != nil {
					summary.recordError(sheet.Name, rowIdx+1, err)
					rowIdx++
					continue
				}
			}
			summary.Inserted++
		}

		rowIdx++
	}

	return summary
}

func (s *SheetSummary) recordError(sheet string, row int, err error) {
	s.Errors++
	s.Samples = append(s.Samples, RowError{
		Sheet:   sheet,
		Row:     row,
		Message: err.Error(),
	})
}

func canonicalHeader(header string, config SheetConfig) string {
	for canonical := range config.Columns {
		if strings.EqualFold(canonical, header) {
			return canonical
		}
	}
	for canonical, aliases := range config.Aliases {
		for _, alias := range aliases {
			if strings.EqualFold(alias, header) {
				return canonical
			}
		}
	}
	return header
}

func buildRecord(rowData map[string]string, config SheetConfig) (map[string]interface{}, error) {
	record := map[string]interface{}{}

	for headerName, columnConfig := range config.Columns {
		value, exists := rowData[headerName]
		if !exists || value == "" {
			if !strings.HasSuffix(columnConfig.Type, "?") && headerName == config.NaturalKey {
				return nil, fmt.Errorf("missing required column %s", headerName)
			}
			continue
		}

		parsed, err := parseValue(value, columnConfig.Type)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %v", headerName, err)
		}
		record[columnConfig.Field] = parsed
	}

	return record, nil
}

func parseValue(value, valueType string) (interface{}, error) {
	valueType = strings.TrimSuffix(valueType, "?")

	switch valueType {
	case "TEXT", "string":
		return value, nil
	case "INT", "int":
		return strconv.Atoi(value)
	case "FLOAT", "float":
		return strconv.ParseFloat(value, 64)
	case "BOOL", "bool":
		value = strings.ToLower(value)
		return value == "yes" || value == "y" || value == "true" || value == "1", nil
	case "LIST", "list":
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return value, nil
	}
}

func findExisting(ctx context.Context, conn *pgxpool.Conn, config SheetConfig, keyValue string) (string, error) {
	query := fmt.Sprintf("SELECT id FROM %s WHERE %s = $1", config.Table, config.NaturalKey)
	var id string
	err := conn.QueryRow(ctx, query, keyValue).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func insertRecord(ctx context.Context, conn *pgxpool.Conn, config SheetConfig, record map[string]interface{}) error {
	fields := []string{"id"}
	values := []interface{}{uuid.NewString()}
	placeholders := []string{"$1"}
	argIndex := 2

	for field, value := range record {
		fields = append(fields, field)
		values = append(values, value)
		placeholders = append(placeholders, fmt.Sprintf("$%d", argIndex))
		argIndex++
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (%s)
	`, config.Table, strings.Join(fields, ", "), strings.Join(placeholders, ", "))

	_, err := conn.Exec(ctx, query, values...)
	return err
}

func updateRecord(ctx context.Context, conn *pgxpool.Conn, config SheetConfig, id string, record map[string]interface{}) error {
	setParts := []string{}
	values := []interface{}{}
	argIndex := 1

	for field, value := range record {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", field, argIndex))
		values = append(values, value)
		argIndex++
	}
	if len(setParts) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s SET %s, updated_at = now()
		WHERE id = $%d
	`, config.Table, strings.Join(setParts, ", "), argIndex)
	values = append(values, id)

	_, err := conn.Exec(ctx, query, values...)
	return err
}
