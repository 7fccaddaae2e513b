package goconsolidate

const (
	// structureFamilyArray is the structure family of all consolidated data.
	structureFamilyArray = "array"
	// managementExternal marks data whose bytes are written by an external
	// producer and never rewritten by the catalog.
	managementExternal = "external"

	// assetParameterSingle is the reader parameter name of single-file assets.
	assetParameterSingle = "data_uri"
	// assetParameterMulti is the reader parameter name of multi-file assets.
	assetParameterMulti = "data_uris"
)

// Asset is a reference to one physical file contributing to the logical
// array of a resource.
type Asset struct {
	// URI is the location of the physical file.
	URI string `json:"uri"`
	// IsDirectory marks assets that reference a directory of files.
	IsDirectory bool `json:"is_directory"`
	// ParameterName is the reader constructor parameter the asset feeds.
	ParameterName string `json:"parameter_name"`
	// Ordinal is the position of the asset within a multi-asset parameter.
	Ordinal int `json:"ordinal"`
}

// DataSourceSnapshot is the point-in-time, catalog-facing description of a
// consolidated resource. It is produced on demand and never stored by the
// consolidator itself; persistence is the catalog's concern.
type DataSourceSnapshot struct {
	Mimetype          string                 `json:"mimetype"`
	Assets            []Asset                `json:"assets"`
	StructureFamily   string                 `json:"structure_family"`
	Shape             []int                  `json:"shape"`
	Chunks            [][]int                `json:"chunks"`
	Dims              []string               `json:"dims,omitempty"`
	AdapterParameters map[string]interface{} `json:"adapter_parameters"`
	Management        string                 `json:"management"`
}
