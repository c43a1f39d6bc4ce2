// Package categorize assigns a spending category to a free-text description
// using an ordered keyword table. The first matching category wins.
package categorize

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
)

// Fallback is used when no rule matches
const Fallback = "Other"

// Rule maps keywords to one category
type Rule struct {
	Name     string   `toml:"name" json:"name"`
	Keywords []string `toml:"keywords" json:"keywords"`
}

// File is the on-disk TOML layout
type File struct {
	Fallback   string `toml:"fallback"`
	Categories []Rule `toml:"category"`
}

// Categorizer matches descriptions against rules in order
type Categorizer struct {
	rules    []Rule
	fallback string
}

// DefaultRules returns the built-in table
func DefaultRules() []Rule {
	return []Rule{
		{Name: "Food", Keywords: []string{
			"mercado", "supermercado", "padaria", "açougue", "peixaria", "restaurante", "lanchonete",
			"pizzaria", "delivery", "ifood", "uber eats", "rappi", "café", "cafezinho", "almoço", "jantar",
			"comida", "alimento", "feira", "hortifruti", "grocery", "restaurant", "lunch", "dinner", "coffee",
		}},
		{Name: "Transport", Keywords: []string{
			"uber", "taxi", "99", "cabify", "gasolina", "combustível", "combustivel", "posto", "estacionamento",
			"pedágio", "ônibus", "metrô", "bilhete", "passagem", "transporte", "viagem", "passagem aérea",
			"fuel", "parking", "bus", "subway",
		}},
		{Name: "Health", Keywords: []string{
			"farmacia", "farmácia", "medicamento", "remédio", "médico", "medico", "dentista", "clínica", "hospital",
			"exame", "laboratório", "plano de saúde", "unimed", "amil", "sulamerica", "pharmacy", "doctor",
		}},
		{Name: "Education", Keywords: []string{
			"curso", "faculdade", "universidade", "escola", "material escolar", "livro", "apostila",
			"mensalidade", "matrícula", "course", "school", "book",
		}},
		{Name: "Leisure", Keywords: []string{
			"cinema", "show", "festival", "ingresso", "jogo", "passeio", "parque", "praia", "hotel",
			"hospedagem", "movie", "game",
		}},
		{Name: "Clothing", Keywords: []string{
			"roupa", "camisa", "calça", "sapato", "tênis", "acessório", "loja", "shopping", "moda", "vestuário",
			"clothes", "shoes",
		}},
		{Name: "Services", Keywords: []string{
			"internet", "net", "vivo", "claro", "oi", "tim", "telefone", "celular", "energia", "luz", "água",
			"agua", "gás", "gas", "condomínio", "condominio", "aluguel", "iptu", "seguro", "banco", "tarifa",
			"rent", "electricity", "water", "phone", "insurance",
		}},
	}
}

// New creates a categorizer; nil rules means the built-in table
func New(rules []Rule, fallback string) *Categorizer {
	if rules == nil {
		rules = DefaultRules()
	}
	if fallback == "" {
		fallback = Fallback
	}
	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			if k := normalize(kw); k != "" {
				kws = append(kws, k)
			}
		}
		normalized = append(normalized, Rule{Name: r.Name, Keywords: kws})
	}
	return &Categorizer{rules: normalized, fallback: fallback}
}

// Load reads rules from a TOML file. An empty path yields the built-in table.
func Load(path string) (*Categorizer, error) {
	if path == "" {
		return New(nil, ""), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading category rules: %w", err)
	}
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing category rules: %w", err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("category rules %s define no categories", path)
	}
	return New(f.Categories, f.Fallback), nil
}

// normalize lowercases and collapses the text into space-separated words
func normalize(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, " ")
}

// Categorize returns the first category with a keyword present as whole words
func (c *Categorizer) Categorize(description string) string {
	text := " " + normalize(description) + " "
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(text, " "+kw+" ") {
				return r.Name
			}
		}
	}
	return c.fallback
}

// Categories lists category names in match order followed by the fallback
func (c *Categorizer) Categories() []string {
	names := make([]string, 0, len(c.rules)+1)
	for _, r := range c.rules {
		names = append(names, r.Name)
	}
	return append(names, c.fallback)
}
