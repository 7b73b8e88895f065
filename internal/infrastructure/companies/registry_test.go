package companies

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
)

func TestDefaultRegistry(t *testing.T) {
	r, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	names := r.Names()
	if len(names) != 11 || names[0] != "크래프톤" {
		t.Fatalf("unexpected default names: %v", names)
	}
	if code, ok := r.StockCode("넷마블"); !ok || code != "251270" {
		t.Fatalf("unexpected stock code %q, %v", code, ok)
	}
	if _, ok := r.StockCode("unknown"); ok {
		t.Fatalf("expected unknown company to have no code")
	}

	names[0] = "changed"
	if r.Names()[0] != "크래프톤" {
		t.Fatalf("Names() must return a copy")
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companies.yaml")
	content := "companies:\n  - code: \"259960\"\n    name: 크래프톤\n  - name: \" 스마일게이트 \"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(r.Names(), []string{"크래프톤", "스마일게이트"}) {
		t.Fatalf("unexpected names: %v", r.Names())
	}
	if _, ok := r.StockCode("스마일게이트"); ok {
		t.Fatalf("expected unlisted company to have no code")
	}
}

func TestParseRejectsInvalidFiles(t *testing.T) {
	cases := map[string]string{
		"empty list":    "companies: []\n",
		"unknown field": "companies:\n  - name: a\n    ticker: b\n",
		"missing name":  "companies:\n  - code: \"1\"\n",
		"duplicate":     "companies:\n  - name: a\n  - name: a\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(content)); !domain.IsKind(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
