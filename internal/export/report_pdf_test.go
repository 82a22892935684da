package export

import (
	"bytes"
	"os"
	"testing"

	"github.com/terraincognita07/selene/internal/apperrors"
)

func TestLoadPDFLicenseRequiresKey(t *testing.T) {
	if err := LoadPDFLicense(""); err == nil {
		t.Fatal("expected an error for an empty license key")
	}
}

func TestExportToPDFRequiresData(t *testing.T) {
	_, err := ExportToPDF(nil, DefaultExportOptions())
	if !apperrors.HasCode(err, apperrors.CodeExportNoData) {
		t.Fatalf("expected EXPORT_NO_DATA, got %v", err)
	}
}

func TestExportToPDFRendersDocument(t *testing.T) {
	apiKey := os.Getenv("UNIDOC_LICENSE_API_KEY")
	if apiKey == "" {
		t.Skip("UNIDOC_LICENSE_API_KEY not set")
	}
	if err := LoadPDFLicense(apiKey); err != nil {
		t.Fatalf("load license: %v", err)
	}

	rendered, err := ExportToPDF(reportFixtures(), DefaultExportOptions())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.HasPrefix(rendered, []byte("%PDF-")) {
		t.Fatalf("expected a PDF document, got %q", rendered[:minLen(len(rendered), 16)])
	}
}

func minLen(a int, b int) int {
	if a < b {
		return a
	}
	return b
}
