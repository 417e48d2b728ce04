// Package i18n serves the wizard's English and Arabic strings from embedded YAML catalogs.
package i18n

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"social-support-wizard/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var locales embed.FS

// Catalog holds flattened dotted keys per language.
type Catalog struct {
	messages map[models.Language]map[string]string
}

// Load parses the embedded catalogs.
func Load() (*Catalog, error) {
	c := &Catalog{messages: map[models.Language]map[string]string{}}
	for _, lang := range []models.Language{models.English, models.Arabic} {
		raw, err := locales.ReadFile(fmt.Sprintf("locales/%s.yaml", lang))
		if err != nil {
			return nil, fmt.Errorf("read %s catalog: %w", lang, err)
		}
		flat, err := Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s catalog: %w", lang, err)
		}
		c.messages[lang] = flat
	}
	return c, nil
}

// MustLoad is Load for process start-up.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse flattens a nested YAML document into dotted keys.
func Parse(raw []byte) (map[string]string, error) {
	var tree map[string]interface{}
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	flat := map[string]string{}
	flatten("", tree, flat)
	return flat, nil
}

func flatten(prefix string, node map[string]interface{}, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, out)
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// T returns the message for key in lang, falling back to English and then to the key itself.
func (c *Catalog) T(lang models.Language, key string) string {
	if c == nil {
		return key
	}
	if msg, ok := c.messages[lang][key]; ok {
		return msg
	}
	if msg, ok := c.messages[models.English][key]; ok {
		return msg
	}
	return key
}

// Format looks up key and substitutes {name} placeholders from vars.
func (c *Catalog) Format(lang models.Language, key string, vars map[string]string) string {
	msg := c.T(lang, key)
	if len(vars) == 0 {
		return msg
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Keys lists every key known for lang, sorted.
func (c *Catalog) Keys(lang models.Language) []string {
	keys := make([]string, 0, len(c.messages[lang]))
	for k := range c.messages[lang] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FieldLabel is the localized label of a form field.
func (c *Catalog) FieldLabel(lang models.Language, field string) string {
	return c.T(lang, "form.fields."+field)
}

// OptionLabel is the localized label of an enumerated value, e.g. gender "female".
func (c *Catalog) OptionLabel(lang models.Language, field, value string) string {
	return c.T(lang, "form."+field+"."+value)
}

// StepTitle is the localized title of step n.
func (c *Catalog) StepTitle(lang models.Language, n int) string {
	return c.T(lang, fmt.Sprintf("form.step%d", n))
}
