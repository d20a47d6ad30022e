package store

import (
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	apperr "github.com/sudankdk/cee/internal/errors"
	"github.com/sudankdk/cee/internal/languages"
	"github.com/sudankdk/cee/internal/model"
)

type templateFile struct {
	Templates []model.Template `yaml:"templates"`
}

// DecodeTemplates reads a YAML document of the form
//
//	templates:
//	  - title: Hello
//	    language: python
//	    code: print("hi")
//
// and validates every entry. Languages are normalised to their canonical tag.
func DecodeTemplates(r io.Reader) ([]model.Template, error) {
	var f templateFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, apperr.Wrapf(err, apperr.InvalidParams, "invalid template file: %v", err)
	}

	for i := range f.Templates {
		tpl := &f.Templates[i]
		if strings.TrimSpace(tpl.Title) == "" {
			return nil, apperr.Newf(apperr.InvalidParams, "template %d: title is required", i+1)
		}
		if strings.TrimSpace(tpl.Code) == "" {
			return nil, apperr.Newf(apperr.InvalidParams, "template %q: code is required", tpl.Title)
		}
		lang, err := languages.Parse(tpl.Language)
		if err != nil {
			return nil, apperr.Wrapf(err, apperr.InvalidParams, "template %q: %v", tpl.Title, err)
		}
		tpl.Language = lang.String()
	}
	return f.Templates, nil
}
