package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMappingConfig(t *testing.T) {
	cfg := defaultMappingConfig()

	vendors, ok := cfg.Sheets["Vendors"]
	require.True(t, ok)
	assert.Equal(t, "vendors", vendors.Table)
	assert.Equal(t, "name", vendors.NaturalKey)

	clients, ok := cfg.Sheets["Clients"]
	require.True(t, ok)
	assert.Equal(t, "clients", clients.Table)
}

func TestCanonicalHeader(t *testing.T) {
	config := defaultMappingConfig().Sheets["Vendors"]

	assert.Equal(t, "Name", canonicalHeader("name", config))
	assert.Equal(t, "Name", canonicalHeader("Vendor Name", config))
	assert.Equal(t, "ContactEmail", canonicalHeader("Email", config))
	assert.Equal(t, "Services", canonicalHeader("Offerings", config))
	// Unknown headers pass through untouched
	assert.Equal(t, "Unmapped", canonicalHeader("Unmapped", config))
}

func TestBuildRecord(t *testing.T) {
	config := defaultMappingConfig().Sheets["Vendors"]

	record, err := buildRecord(map[string]string{
		"Name":     "Acme",
		"Location": "NYC",
		"Services": "SEO, Web Design, ",
	}, config)
	require.NoError(t, err)

	assert.Equal(t, "Acme", record["name"])
	assert.Equal(t, "NYC", record["location"])
	assert.Equal(t, []string{"SEO", "Web Design"}, record["services"])
}

func TestBuildRecordMissingName(t *testing.T) {
	config := defaultMappingConfig().Sheets["Vendors"]

	_, err := buildRecord(map[string]string{"Location": "NYC"}, config)
	assert.Error(t, err)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		valueType string
		expected  interface{}
	}{
		{"text", "hello", "TEXT", "hello"},
		{"optional text", "hello", "TEXT?", "hello"},
		{"int", "42", "INT", 42},
		{"float", "2.5", "FLOAT", 2.5},
		{"bool yes", "Yes", "BOOL", true},
		{"bool no", "no", "BOOL", false},
		{"list", "a, b,c", "LIST", []string{"a", "b", "c"}},
		{"unknown type passes through", "raw", "WEIRD", "raw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseValue(tt.value, tt.valueType)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseValueBadInt(t *testing.T) {
	_, err := parseValue("not a number", "INT")
	assert.Error(t, err)
}

func TestLoadMappingConfigFallsBack(t *testing.T) {
	cfg, err := loadMappingConfig("does/not/exist.yaml")
	require.NoError(t, err)
	assert.Contains(t, cfg.Sheets, "Vendors")
}
