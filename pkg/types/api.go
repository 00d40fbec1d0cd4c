package types

// LoraFilesResponse is returned by GET /lora-files and GET /scan-all-loras.
type LoraFilesResponse struct {
	LoraFiles []ModelFileEntry `json:"lora_files"`
	// Requested sub-path, "/" for the base directory. Empty for tree scans.
	// example: /
	CurrentPath string `json:"current_path,omitempty" example:"/"`
}

// FoldersResponse is returned by GET /folders.
type FoldersResponse struct {
	Folders []string `json:"folders"`
	// example: chars
	CurrentPath string `json:"current_path" example:"chars"`
	CanGoBack   bool   `json:"can_go_back"`
}

// PreviewsResponse lists every preview reference of one model file.
type PreviewsResponse struct {
	Previews []string `json:"previews"`
}

// UploadPreviewResponse is returned after a preview upload.
type UploadPreviewResponse struct {
	// example: success
	Status string `json:"status" example:"success"`
	// example: foo_2.png
	Filename string `json:"filename" example:"foo_2.png"`
}

// SwapPreviewRequest promotes File to the primary preview of Name.
type SwapPreviewRequest struct {
	Path string `json:"path"`
	// Model base name.
	// example: foo
	Name string `json:"name" example:"foo"`
	// Preview file to promote.
	// example: foo_2.png
	File string `json:"file" example:"foo_2.png"`
}

// LoraConfigRequest overwrites the sidecar of one model file.
type LoraConfigRequest struct {
	Path string `json:"path"`
	// Model base name (file name without extension).
	// example: foo
	Name   string        `json:"name" example:"foo"`
	Config SidecarConfig `json:"config"`
}

// ClickRequest records one selection of a model file.
type ClickRequest struct {
	// example: foo.safetensors
	ModelName string `json:"model_name" example:"foo.safetensors"`
	// Optional search term active when the model was picked.
	// example: Watercolor Style
	SearchTerm string `json:"search_term,omitempty" example:"Watercolor Style"`
}

// ClickResponse carries the updated counters.
type ClickResponse struct {
	GlobalClicks int `json:"global_clicks"`
	SearchClicks int `json:"search_clicks"`
}

// CombinationsResponse is returned by GET /combinations.
type CombinationsResponse struct {
	Combinations []Combination `json:"combinations"`
}

// BaseModelsResponse lists the classifier labels.
type BaseModelsResponse struct {
	BaseModels []string `json:"base_models"`
}

// ServiceConfig is the user-facing subset of the service configuration.
type ServiceConfig struct {
	// Base directory holding the model files.
	// example: /home/user/loras
	LoraPath string `json:"lora_path" example:"/home/user/loras"`
}

// StatusOK is a generic success payload.
type StatusOK struct {
	// example: success
	Status string `json:"status" example:"success"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Configured base directory.
	BasePath string `json:"base_path"`
	// Whether the base directory exists.
	BasePathValid bool `json:"base_path_valid"`
	// Incremented on every structural change seen by the watcher; 0 when watching is off.
	// example: 3
	CatalogGeneration uint64 `json:"catalog_generation" example:"3"`
	// Unix time of the last observed change.
	LastChangeUnix int64 `json:"last_change_unix,omitempty"`
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
