package footprint

import (
	"strings"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindFootprint, "F9.1", "Footprint meta-data is filled in as appropriate", func(ctx *advisor.Context) advisor.Rule {
		return &MetadataRule{fp: ctx.Footprint}
	})
}

var illegalTagChars = []string{",", ";", ":"}

// MetadataRule checks the footprint name against its file, the value field,
// the description and the keyword tags.
type MetadataRule struct {
	advisor.Base
	fp *footprint.Footprint

	nameMismatch bool
}

func (r *MetadataRule) checkTags() {
	if r.fp.Tags == "" {
		r.Error("Keyword field is empty - add keyword tags")
		return
	}
	if len(r.fp.Tags) <= 1 {
		return
	}
	for _, c := range illegalTagChars {
		if strings.Contains(r.fp.Tags, c) {
			r.Errorf("Tags contain illegal character: ('%s')", c)
		}
	}
}

// Check implements advisor.Rule.
func (r *MetadataRule) Check() bool {
	r.Begin()
	r.nameMismatch = false

	if base := r.fp.FileBase(); base != "" && base != r.fp.Name {
		r.Errorf("footprint name (in file) was '%s', but expected (from filename) '%s'.", r.fp.Name, base)
		r.nameMismatch = true
	}

	value := ""
	if r.fp.Value != nil {
		value = r.fp.Value.Value
	}
	if value != r.fp.Name {
		r.Errorf("Value label '%s' does not match filename '%s'", value, r.fp.Name)
		r.nameMismatch = true
	}

	if r.fp.Description == "" {
		r.Error("Description field is empty - add footprint description")
	}

	r.checkTags()

	if !advisor.ValidName(r.fp.Name, false) {
		r.Errorf("Module name '%s' contains invalid characters as per KLC 1.7", r.fp.Name)
	}

	return r.HasErrors()
}

// Fix renames the footprint after its file and copies the name into the
// value field.
func (r *MetadataRule) Fix() {
	if !r.nameMismatch {
		return
	}
	if base := r.fp.FileBase(); base != "" {
		r.fp.Name = base
	}
	r.Infof("Setting footprint value to '%s'", r.fp.Name)
	if r.fp.Value != nil {
		r.fp.Value.Value = r.fp.Name
	}
}
