package categorize

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCategorize_DefaultTable(t *testing.T) {
	c := New(nil, "")
	tests := map[string]string{
		"Mercado do bairro":    "Food",
		"almoço com cliente":   "Food",
		"Uber para o trabalho": "Transport",
		"viagem praia":         "Transport",
		"Farmácia":             "Health",
		"conta de luz":         "Services",
		"biscoito":             "Other",
		"":                     "Other",
	}
	for in, want := range tests {
		if got := c.Categorize(in); got != want {
			t.Errorf("Categorize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCategorize_FirstMatchWins(t *testing.T) {
	c := New([]Rule{
		{Name: "A", Keywords: []string{"shared"}},
		{Name: "B", Keywords: []string{"shared", "only b"}},
	}, "Z")
	if got := c.Categorize("a shared thing"); got != "A" {
		t.Fatalf("got %q, want A", got)
	}
	if got := c.Categorize("Only  B!"); got != "B" {
		t.Fatalf("multi-word keyword: got %q, want B", got)
	}
	if got := c.Categorize("nothing"); got != "Z" {
		t.Fatalf("fallback: got %q", got)
	}
	if names := c.Categories(); len(names) != 3 || names[2] != "Z" {
		t.Fatalf("Categories() = %v", names)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.toml")
	data := `
fallback = "Misc"

[[category]]
name = "Pets"
keywords = ["ração", "veterinário"]

[[category]]
name = "Food"
keywords = ["mercado"]
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := c.Categorize("Ração do cachorro"); got != "Pets" {
		t.Fatalf("got %q, want Pets", got)
	}
	if got := c.Categorize("uber"); got != "Misc" {
		t.Fatalf("got %q, want Misc", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("missing file loaded")
	}
	path := filepath.Join(t.TempDir(), "empty.toml")
	if err := os.WriteFile(path, []byte(`fallback = "x"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("file without categories loaded")
	}
	c, err := Load("")
	if err != nil || c.Categorize("mercado") != "Food" {
		t.Fatalf("Load(\"\") = %v, %v", c, err)
	}
}
