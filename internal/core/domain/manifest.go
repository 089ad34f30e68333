package domain

// CatalogSource names the catalog provider a manifest binds to.
type CatalogSource string

const (
	// CatalogSourceSnapshot reads a pinned snapshot file from disk.
	CatalogSourceSnapshot CatalogSource = "snapshot"
	// CatalogSourceNixHub queries the NixHub resolve API.
	CatalogSourceNixHub CatalogSource = "nixhub"
)

// CatalogSpec describes where the package catalog comes from.
type CatalogSpec struct {
	Source CatalogSource
	// Path is the absolute snapshot path for CatalogSourceSnapshot.
	Path string
}

// Manifest is the static declaration an environment table is built from.
type Manifest struct {
	// Root is the directory the manifest was loaded from.
	Root         string
	Systems      []PlatformID
	Requirements RequirementSet
	Hook         string
	Catalog      CatalogSpec
}
