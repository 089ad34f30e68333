package config

// ManifestFile represents the structure of the devshell.yaml manifest.
type ManifestFile struct {
	Version  string              `yaml:"version"`
	Systems  []string            `yaml:"systems"`
	Packages map[string][]string `yaml:"packages"`
	Hook     string              `yaml:"hook"`
	Catalog  CatalogDTO          `yaml:"catalog"`
}

// CatalogDTO represents the catalog section of the manifest.
type CatalogDTO struct {
	Source string `yaml:"source"`
	Path   string `yaml:"path"`
}
