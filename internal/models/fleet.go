package models

// FleetRules is display-grouping configuration served to the frontend.
// The backend treats it as passthrough data: grouping and color choices
// happen client-side.
type FleetRules struct {
	Version int          `yaml:"version" json:"version"`
	GroupBy string       `yaml:"group_by" json:"groupBy"` // "aircraft" or "carrier"
	Groups  []FleetGroup `yaml:"groups" json:"groups"`
}

// FleetGroup maps carriers or aircraft to one display group.
type FleetGroup struct {
	Name     string   `yaml:"name" json:"name"`
	Color    string   `yaml:"color" json:"color"`
	Carriers []string `yaml:"carriers,omitempty" json:"carriers,omitempty"`
	Aircraft []string `yaml:"aircraft,omitempty" json:"aircraft,omitempty"`
}
