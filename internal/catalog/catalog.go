// Package catalog describes the software components a run can offer and which
// environments each one applies to.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/gameready/internal/config"
	"github.com/alexisbeaulieu97/gameready/internal/environment"
	"github.com/alexisbeaulieu97/gameready/internal/model"
	gameerrors "github.com/alexisbeaulieu97/gameready/pkg/errors"
)

//go:embed default.yaml
var defaultCatalog []byte

// DefaultSource names the embedded catalog in errors.
const DefaultSource = "default.yaml"

// Group buckets components for presentation.
type Group string

const (
	GroupDrivers       Group = "drivers"
	GroupPlatforms     Group = "platforms"
	GroupCompatibility Group = "compatibility"
	GroupOptional      Group = "optional"
)

// Catalog is the root document.
type Catalog struct {
	Version    string      `yaml:"version" validate:"required,semver"`
	Components []Component `yaml:"components" validate:"required,min=1,dive"`
}

// Component is one installable piece of software, reachable through an OS
// package, a sandboxed app, or both.
type Component struct {
	ID          model.ComponentID `yaml:"id" json:"id" validate:"required,component_id"`
	Name        string            `yaml:"name" json:"name" validate:"required"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Group       Group             `yaml:"group" json:"group" validate:"required,oneof=drivers platforms compatibility optional"`
	Package     string            `yaml:"package,omitempty" json:"package,omitempty" validate:"package_name"`
	App         string            `yaml:"app,omitempty" json:"app,omitempty" validate:"app_id"`
	// Extras are installed alongside Package; they are not inspected.
	Extras []string `yaml:"extras,omitempty" json:"extras,omitempty" validate:"omitempty,dive,required,package_name"`
	// Environments limits the component to these kinds; empty means all.
	Environments []string `yaml:"environments,omitempty" json:"environments,omitempty" validate:"omitempty,dive,env_kind"`
}

// Channels lists the component's channel references, package first.
func (c Component) Channels() []model.ChannelRef {
	var refs []model.ChannelRef
	if c.Package != "" {
		refs = append(refs, model.PackageChannel(c.Package))
	}
	if c.App != "" {
		refs = append(refs, model.AppChannel(c.App))
	}
	return refs
}

// AppliesTo reports whether the component is offered for kind.
func (c Component) AppliesTo(kind environment.Kind) bool {
	if len(c.Environments) == 0 {
		return true
	}
	for _, token := range c.Environments {
		if parsed, err := environment.ParseKind(token); err == nil && parsed == kind {
			return true
		}
	}
	return false
}

// Load reads and validates the catalog at path.
func Load(path string) (*Catalog, error) {
	var c Catalog
	if err := config.ReadYAMLFile(path, &c); err != nil {
		return nil, err
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Parse decodes and validates a catalog document.
func Parse(source string, data []byte) (*Catalog, error) {
	var c Catalog
	if err := config.DecodeYAML(source, data, &c); err != nil {
		return nil, err
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(DefaultSource, defaultCatalog)
}

// DefaultYAML returns a copy of the embedded catalog document.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultCatalog...)
}

// LoadOrDefault loads path, or the embedded catalog when path is empty.
func LoadOrDefault(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return Load(path)
}

// Validate performs structural and cross-field validation.
func Validate(c *Catalog) error {
	if c == nil {
		return gameerrors.NewValidationError("catalog", "catalog is nil", nil)
	}

	if err := config.GetValidator().Struct(c); err != nil {
		return config.ConvertValidationError(err)
	}

	seen := make(map[model.ComponentID]int, len(c.Components))
	for i, comp := range c.Components {
		if first, exists := seen[comp.ID]; exists {
			return gameerrors.NewValidationError(
				config.FieldForItem("components", i, "id"),
				fmt.Sprintf("duplicate component id %q (first declared at components[%d])", comp.ID, first),
				nil,
			)
		}
		seen[comp.ID] = i

		if comp.Package == "" && comp.App == "" {
			return gameerrors.NewValidationError(
				config.FieldForItem("components", i, "package"),
				fmt.Sprintf("component %q declares no package or app channel", comp.ID),
				nil,
			)
		}
		if comp.Package == "" && len(comp.Extras) > 0 {
			return gameerrors.NewValidationError(
				config.FieldForItem("components", i, "extras"),
				fmt.Sprintf("component %q lists extras without a package", comp.ID),
				nil,
			)
		}
	}

	return nil
}

// ForEnvironment returns the components offered for kind in declaration order.
func (c *Catalog) ForEnvironment(kind environment.Kind) []Component {
	var out []Component
	for _, comp := range c.Components {
		if comp.AppliesTo(kind) {
			out = append(out, comp)
		}
	}
	return out
}

// Lookup finds a component by id.
func (c *Catalog) Lookup(id model.ComponentID) (Component, bool) {
	for _, comp := range c.Components {
		if comp.ID == id {
			return comp, true
		}
	}
	return Component{}, false
}
