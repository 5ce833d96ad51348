package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Profile is the order-list workflow read from a profile file. Zero-valued
// fields mean "use the built-in default".
type Profile struct {
	// IDColumn is the identifier header shared by both source tables.
	IDColumn string `mapstructure:"id-column"`

	// OrderSheet and CatalogSheet select worksheets in the uploaded workbooks.
	OrderSheet   string `mapstructure:"order-sheet"`
	CatalogSheet string `mapstructure:"catalog-sheet"`

	// Translations rename source headers. Kept as a list because header names
	// are case-sensitive and map keys are not.
	Translations []Translation `mapstructure:"translations"`

	DisplayColumns []string `mapstructure:"display-columns"`
	EmptyColumns   []string `mapstructure:"empty-columns"`
	InputColumns   []string `mapstructure:"input-columns"`

	// SheetName names the worksheet of the rendered workbook.
	SheetName string `mapstructure:"sheet-name"`
}

// Translation renames one source header.
type Translation struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

// TranslationMap returns the translations as a lookup map, or nil when the
// profile defines none.
func (p *Profile) TranslationMap() map[string]string {
	if len(p.Translations) == 0 {
		return nil
	}
	m := make(map[string]string, len(p.Translations))
	for _, t := range p.Translations {
		m[t.From] = t.To
	}
	return m
}

// LoadProfile reads a workflow profile. The format follows the file
// extension (yaml, yml, json or toml). An empty path returns an empty
// profile.
//
// Scalar fields can be overridden with PROFILE_* environment variables,
// e.g. PROFILE_ID_COLUMN.
func LoadProfile(path string) (*Profile, error) {
	v := viper.New()
	v.SetEnvPrefix("profile")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, key := range []string{"id-column", "order-sheet", "catalog-sheet", "sheet-name"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind profile env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read profile %s: %w", path, err)
		}
	}

	p := &Profile{}
	if err := v.Unmarshal(p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Validate rejects translations that are blank or that map two headers to
// the same name.
func (p *Profile) Validate() error {
	var errs []string
	from := make(map[string]bool, len(p.Translations))
	to := make(map[string]string, len(p.Translations))
	for i, t := range p.Translations {
		if t.From == "" || t.To == "" {
			errs = append(errs, fmt.Sprintf("translation %d needs both from and to", i))
			continue
		}
		if from[t.From] {
			errs = append(errs, fmt.Sprintf("header %q is translated twice", t.From))
		}
		from[t.From] = true
		if prev, ok := to[t.To]; ok {
			errs = append(errs, fmt.Sprintf("headers %q and %q both translate to %q", prev, t.From, t.To))
		}
		to[t.To] = t.From
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
