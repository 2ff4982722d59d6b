package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	cat := DefaultCatalog()
	require.NoError(t, cat.Validate())
	require.Equal(t, []string{"Paris", "Lyon", "Marseille", "Toulouse", "Bordeaux"}, cat.Cities)
	require.Equal(t, []string{"Zone A", "Zone B", "Zone C", "Zone D", "Zone E"}, cat.Zones)
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `
cities:
  - Nantes
  - Lille
zones:
  - Zone Nord
  - Zone Sud
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cat, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Equal(t, []string{"Nantes", "Lille"}, cat.Cities)
	require.Equal(t, []string{"Zone Nord", "Zone Sud"}, cat.Zones)
}

func TestLoadCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "no cities", content: "zones:\n  - Zone A\n"},
		{name: "no zones", content: "cities:\n  - Paris\n"},
		{name: "blank city", content: "cities:\n  - \"  \"\nzones:\n  - Zone A\n"},
		{name: "not yaml", content: "{{{{"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))

			_, err := LoadCatalog(path)
			require.Error(t, err)
		})
	}
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
