package cargo

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/creachadair/tomledit"
	"github.com/creachadair/tomledit/parser"
	"github.com/google/uuid"

	"github.com/matzehuels/forkdep/pkg/errors"
)

// CratesIOPatchKey is the patch sub-table name for crates.io dependencies.
const CratesIOPatchKey = "crates-io"

// OverrideKind selects the patch entry field to write.
type OverrideKind string

const (
	// OverridePath redirects the dependency to a local directory.
	OverridePath OverrideKind = "path"
	// OverrideGit redirects the dependency to a git URL.
	OverrideGit OverrideKind = "git"
)

// Override describes where a patched dependency should resolve to.
type Override struct {
	Kind     OverrideKind
	Location string
}

// PatchTableKey returns the patch sub-table name for the registry a package
// was resolved from: "crates-io" for the default registry, the registry URL
// for alternate registries, and the repository URL for git sources.
func PatchTableKey(p *Package) string {
	switch {
	case p.Source == CratesIOIndex, p.Source == "":
		return CratesIOPatchKey
	case p.IsGit():
		return p.GitURL()
	case p.IsRegistry():
		return strings.TrimPrefix(p.Source, "registry+")
	default:
		return CratesIOPatchKey
	}
}

// LoadManifest parses the manifest at path into a structurally editable
// document. The document keeps comments, key order and table layout, so
// unrelated content survives a rewrite untouched.
func LoadManifest(path string) (*tomledit.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeManifestNotFound, "manifest not found: %s", path)
		}
		return nil, err
	}
	defer f.Close()

	doc, err := tomledit.Parse(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse manifest %s", path)
	}
	return doc, nil
}

// ApplyPatch inserts or updates the patch entry
//
//	[patch.<registry>]
//	<dependency> = { <kind> = "<location>" }
//
// in doc, mutating it in place. Existing sibling keys of the entry (a pinned
// version, a branch) are left untouched; only the override field itself is
// overwritten. Applying the same patch twice yields the same document.
//
// The traversal is validated before anything is created: if an existing
// value at patch, the registry table, or the dependency entry is not a
// table, ApplyPatch returns a MALFORMED_MANIFEST error and doc is unchanged.
// Tables are only materialized on the way to writing the override value, so
// no empty sections are ever introduced.
func ApplyPatch(doc *tomledit.Document, registry, dependency string, o Override) error {
	if err := errors.ValidateCrateName(dependency); err != nil {
		return err
	}
	if o.Location == "" {
		return errors.New(errors.ErrCodeInvalidInput, "override location cannot be empty")
	}

	// Validate the whole traversal first so a malformed document is never
	// partially mutated.
	keys := []string{"patch", registry, dependency}
	for i := range keys {
		if err := checkTable(doc, keys[:i+1]); err != nil {
			return err
		}
	}

	value := parser.MustValue(tomlString(o.Location))

	// The entry already exists, as a full section or an inline table.
	// Overwrite the override field in place and keep everything else.
	if sec, kv, found := locate(doc, keys); found {
		if sec != nil {
			upsertItem(sec, string(o.Kind), value)
		} else {
			upsertInline(kv, string(o.Kind), value)
		}
		return nil
	}

	entry := &parser.KeyValue{
		Name:  parser.Key{dependency},
		Value: parser.MustValue(fmt.Sprintf("{ %s = %s }", o.Kind, tomlString(o.Location))),
	}

	// Append to the registry table when one exists, wherever it lives.
	if sec, kv, found := locate(doc, keys[:2]); found {
		if sec != nil {
			sec.Items = append(sec.Items, entry)
		} else {
			in := kv.Value.X.(parser.Inline)
			kv.Value.X = append(in, entry)
		}
		return nil
	}

	doc.Sections = append(doc.Sections, &tomledit.Section{
		Heading: &parser.Heading{Name: parser.Key{"patch", registry}},
		Items:   []parser.Item{entry},
	})
	return nil
}

// checkTable verifies that the value at path, if present, can be traversed
// as a table.
func checkTable(doc *tomledit.Document, path []string) error {
	sec, kv, found := locate(doc, path)
	if !found || sec != nil {
		return nil
	}
	if _, ok := kv.Value.X.(parser.Inline); !ok {
		return errors.New(errors.ErrCodeMalformedManifest,
			"manifest key %q exists but is not a table", strings.Join(path, "."))
	}
	return nil
}

// locate finds the node named by path. A path can land on a section
// heading, a key-value mapping inside a section, or a key nested in an
// inline table. Exactly one of sec and kv is non-nil when found is true.
func locate(doc *tomledit.Document, path []string) (sec *tomledit.Section, kv *parser.KeyValue, found bool) {
	if e := doc.First(path...); e != nil {
		if e.IsSection() {
			return e.Section, nil, true
		}
		return nil, e.KeyValue, true
	}
	// The tail of the path may live inside an inline table.
	for i := len(path) - 1; i > 0; i-- {
		e := doc.First(path[:i]...)
		if e == nil || e.IsSection() {
			continue
		}
		inner := inlineLookup(e.KeyValue, path[i:])
		if inner == nil {
			return nil, nil, false
		}
		return nil, inner, true
	}
	return nil, nil, false
}

// inlineLookup descends through nested inline tables along rest.
func inlineLookup(kv *parser.KeyValue, rest []string) *parser.KeyValue {
	for len(rest) > 0 {
		in, ok := kv.Value.X.(parser.Inline)
		if !ok {
			return nil
		}
		if kv = inlineKey(in, rest[0]); kv == nil {
			return nil
		}
		rest = rest[1:]
	}
	return kv
}

func inlineKey(in parser.Inline, name string) *parser.KeyValue {
	for _, kv := range in {
		if kv.Name.Equals(parser.Key{name}) {
			return kv
		}
	}
	return nil
}

// upsertItem sets name to v inside a [section], replacing an existing
// mapping or appending a new one at the end.
func upsertItem(sec *tomledit.Section, name string, v parser.Value) {
	for _, item := range sec.Items {
		if kv, ok := item.(*parser.KeyValue); ok && kv.Name.Equals(parser.Key{name}) {
			kv.Value = v
			return
		}
	}
	sec.Items = append(sec.Items, &parser.KeyValue{Name: parser.Key{name}, Value: v})
}

// upsertInline sets name to v inside an inline table, replacing an existing
// key or appending a new one. The caller has verified owner holds an inline
// table.
func upsertInline(owner *parser.KeyValue, name string, v parser.Value) {
	in := owner.Value.X.(parser.Inline)
	if kv := inlineKey(in, name); kv != nil {
		kv.Value = v
		return
	}
	owner.Value.X = append(in, &parser.KeyValue{Name: parser.Key{name}, Value: v})
}

// tomlString renders s as a TOML basic string.
func tomlString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// WriteManifest serializes doc and replaces the file at path atomically:
// the document is written to a unique temp file in the same directory and
// renamed over the original, so a crash mid-write never leaves a truncated
// manifest behind.
func WriteManifest(doc *tomledit.Document, path string) error {
	var buf bytes.Buffer
	if err := tomledit.Format(&buf, doc); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "serialize manifest")
	}

	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}
