package parsing

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// GenericKey is the reserved registry entry used when no vendor name matches.
const GenericKey = "generic"

//go:embed patterns.json
var defaultPatterns []byte

// TablePatterns locate the line-item table and its rows. Row must expose four
// capture groups: description, quantity, unit price, line total.
type TablePatterns struct {
	Start *regexp.Regexp
	Row   *regexp.Regexp
	End   *regexp.Regexp
}

// Profile is one vendor's compiled extraction rule set. DueDate and
// Participant may be nil when the registry entry omits them; the matching
// fields then simply come back empty.
type Profile struct {
	Key           string
	Name          string
	InvoiceNumber *regexp.Regexp
	InvoiceDate   *regexp.Regexp
	DueDate       *regexp.Regexp
	TotalAmount   *regexp.Regexp
	Participant   *regexp.Regexp
	Table         TablePatterns
}

// Registry maps vendor keys to compiled profiles. It is built once and
// read-only afterwards, so a single Registry is safe for concurrent parsers.
type Registry struct {
	profiles map[string]*Profile
	order    []string // vendor keys in detection order, generic excluded
}

type registryFile struct {
	InvoiceTypes map[string]profileSpec `json:"invoice_types"`
}

type profileSpec struct {
	Name     string      `json:"name"`
	Patterns patternSpec `json:"patterns"`
}

type patternSpec struct {
	InvoiceNumber string    `json:"invoice_number"`
	InvoiceDate   string    `json:"invoice_date"`
	DueDate       string    `json:"due_date"`
	TotalAmount   string    `json:"total_amount"`
	Participant   string    `json:"participant"`
	LineItems     tableSpec `json:"line_items"`
}

type tableSpec struct {
	TableStart string `json:"table_start"`
	Row        string `json:"row"`
	TableEnd   string `json:"table_end"`
}

// LoadRegistry reads and compiles a pattern registry file. Any problem with
// the file is fatal at construction time.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pattern registry: %w", err)
	}
	return ParseRegistry(data)
}

// DefaultRegistry compiles the registry embedded in the binary.
func DefaultRegistry() (*Registry, error) {
	return ParseRegistry(defaultPatterns)
}

// ParseRegistry compiles a JSON pattern registry. The registry must carry a
// "generic" fallback entry; every other entry names one vendor.
func ParseRegistry(data []byte) (*Registry, error) {
	var file registryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing pattern registry: %w", err)
	}
	if len(file.InvoiceTypes) == 0 {
		return nil, fmt.Errorf("pattern registry defines no invoice types")
	}

	reg := &Registry{profiles: make(map[string]*Profile, len(file.InvoiceTypes))}
	for key, spec := range file.InvoiceTypes {
		profile, err := compileProfile(key, spec)
		if err != nil {
			return nil, fmt.Errorf("invoice type %q: %w", key, err)
		}
		reg.profiles[key] = profile
		if key != GenericKey {
			reg.order = append(reg.order, key)
		}
	}
	if _, ok := reg.profiles[GenericKey]; !ok {
		return nil, fmt.Errorf("pattern registry must define a %q fallback entry", GenericKey)
	}

	// Detection order is vendor keys sorted ascending; the registry file is a
	// JSON object, so this is the stable equivalent of its entry order.
	sort.Strings(reg.order)
	return reg, nil
}

func compileProfile(key string, spec profileSpec) (*Profile, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, fmt.Errorf("missing display name")
	}

	profile := &Profile{Key: key, Name: spec.Name}

	var err error
	if profile.InvoiceNumber, err = compilePattern("invoice_number", spec.Patterns.InvoiceNumber, true); err != nil {
		return nil, err
	}
	if profile.InvoiceDate, err = compilePattern("invoice_date", spec.Patterns.InvoiceDate, true); err != nil {
		return nil, err
	}
	if profile.DueDate, err = compilePattern("due_date", spec.Patterns.DueDate, false); err != nil {
		return nil, err
	}
	if profile.TotalAmount, err = compilePattern("total_amount", spec.Patterns.TotalAmount, true); err != nil {
		return nil, err
	}
	if profile.Participant, err = compilePattern("participant", spec.Patterns.Participant, false); err != nil {
		return nil, err
	}
	if profile.Table.Start, err = compilePattern("line_items.table_start", spec.Patterns.LineItems.TableStart, true); err != nil {
		return nil, err
	}
	if profile.Table.Row, err = compilePattern("line_items.row", spec.Patterns.LineItems.Row, true); err != nil {
		return nil, err
	}
	if profile.Table.End, err = compilePattern("line_items.table_end", spec.Patterns.LineItems.TableEnd, true); err != nil {
		return nil, err
	}
	return profile, nil
}

// compilePattern compiles one extraction pattern with case-insensitive and
// multiline matching. Optional patterns may be empty and compile to nil.
func compilePattern(name, expr string, required bool) (*regexp.Regexp, error) {
	if expr == "" {
		if required {
			return nil, fmt.Errorf("missing %s pattern", name)
		}
		return nil, nil
	}
	re, err := regexp.Compile("(?im)" + expr)
	if err != nil {
		return nil, fmt.Errorf("compiling %s pattern: %w", name, err)
	}
	return re, nil
}

// Detect returns the profile whose vendor display name occurs in the text,
// testing vendors in registry order and falling back to the generic entry.
// Matching is a case-insensitive literal substring test.
func (r *Registry) Detect(text string) *Profile {
	lower := strings.ToLower(text)
	for _, key := range r.order {
		profile := r.profiles[key]
		if strings.Contains(lower, strings.ToLower(profile.Name)) {
			return profile
		}
	}
	return r.profiles[GenericKey]
}

// Lookup returns the profile registered under key.
func (r *Registry) Lookup(key string) (*Profile, bool) {
	profile, ok := r.profiles[key]
	return profile, ok
}
