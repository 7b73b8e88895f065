package companies

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
)

var DefaultCompanies = []domain.Company{
	{Code: "259960", Name: "크래프톤"},
	{Code: "036570", Name: "엔씨소프트"},
	{Code: "251270", Name: "넷마블"},
	{Code: "263750", Name: "펄어비스"},
	{Code: "293490", Name: "카카오게임즈"},
	{Code: "112040", Name: "위메이드"},
	{Code: "078340", Name: "컴투스"},
	{Code: "095660", Name: "네오위즈"},
	{Code: "194480", Name: "데브시스터즈"},
	{Code: "069080", Name: "웹젠"},
	{Code: "192080", Name: "더블유게임즈"},
}

type fileFormat struct {
	Companies []domain.Company `yaml:"companies"`
}

type Registry struct {
	companies []domain.Company
	codes     map[string]string
}

func New(companies []domain.Company) (*Registry, error) {
	if len(companies) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "company registry", fmt.Errorf("no companies"))
	}
	r := &Registry{codes: make(map[string]string, len(companies))}
	for i, c := range companies {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "company registry", fmt.Errorf("entry %d has no name", i))
		}
		if _, dup := r.codes[name]; dup {
			return nil, domain.WrapError(domain.ErrInvalidInput, "company registry", fmt.Errorf("duplicate company %q", name))
		}
		code := strings.TrimSpace(c.Code)
		r.codes[name] = code
		r.companies = append(r.companies, domain.Company{Code: code, Name: name})
	}
	return r, nil
}

func Default() *Registry {
	r, err := New(DefaultCompanies)
	if err != nil {
		panic(err)
	}
	return r
}

func Load(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read companies file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Registry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file fileFormat
	if err := dec.Decode(&file); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse companies file", err)
	}
	return New(file.Companies)
}

func (r *Registry) Names() []string {
	out := make([]string, len(r.companies))
	for i, c := range r.companies {
		out[i] = c.Name
	}
	return out
}

func (r *Registry) StockCode(name string) (string, bool) {
	code, ok := r.codes[strings.TrimSpace(name)]
	if !ok || code == "" {
		return "", false
	}
	return code, true
}

func (r *Registry) Companies() []domain.Company {
	return append([]domain.Company(nil), r.companies...)
}
