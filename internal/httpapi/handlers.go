package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"loradex/pkg/types"
)

type handlers struct{ svc Service }

// decodeJSON enforces the JSON content type and body limit, then decodes
// into v. It writes the error response itself and reports false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// readUpload returns the bytes of multipart field "file".
func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return nil, false
		}
		writeJSONError(w, http.StatusBadRequest, "invalid multipart body")
		return nil, false
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "file is required")
		return nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "could not read upload")
		return nil, false
	}
	return data, true
}

// @Summary  Service status
// @Tags     ops
// @Produce  json
// @Success  200 {object} types.StatusResponse
// @Router   /status [get]
func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

// @Summary  Read the service configuration
// @Tags     config
// @Produce  json
// @Success  200 {object} types.ServiceConfig
// @Router   /config [get]
func (h *handlers) getConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Config())
}

// @Summary  Change the base directory
// @Tags     config
// @Accept   json
// @Produce  json
// @Param    body body types.ServiceConfig true "new configuration"
// @Success  200 {object} types.StatusOK
// @Failure  400 {object} types.ErrorResponse
// @Failure  404 {object} types.ErrorResponse
// @Router   /config [post]
func (h *handlers) setConfig(w http.ResponseWriter, r *http.Request) {
	var req types.ServiceConfig
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.SetConfig(req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.StatusOK{Status: "success"})
}

// @Summary  List the base model labels
// @Tags     catalog
// @Produce  json
// @Success  200 {object} types.BaseModelsResponse
// @Router   /base-models [get]
func (h *handlers) baseModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.BaseModelsResponse{BaseModels: h.svc.BaseModels()})
}

// @Summary  List sub-folders
// @Tags     catalog
// @Produce  json
// @Param    path query string false "sub-path relative to the base directory"
// @Success  200 {object} types.FoldersResponse
// @Failure  403 {object} types.ErrorResponse
// @Failure  404 {object} types.ErrorResponse
// @Router   /folders [get]
func (h *handlers) folders(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Folders(r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary  Scan one folder
// @Tags     catalog
// @Produce  json
// @Param    path   query string false "sub-path relative to the base directory"
// @Param    search query string false "search term for per-term click counts"
// @Success  200 {object} types.LoraFilesResponse
// @Failure  403 {object} types.ErrorResponse
// @Failure  404 {object} types.ErrorResponse
// @Router   /lora-files [get]
func (h *handlers) loraFiles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := scanContext(r)
	defer cancel()
	q := r.URL.Query()
	res, err := h.svc.LoraFiles(ctx, q.Get("path"), q.Get("search"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary  Scan the whole tree
// @Tags     catalog
// @Produce  json
// @Param    search query string false "search term for per-term click counts"
// @Success  200 {object} types.LoraFilesResponse
// @Failure  404 {object} types.ErrorResponse
// @Router   /scan-all-loras [get]
func (h *handlers) scanAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := scanContext(r)
	defer cancel()
	res, err := h.svc.ScanAll(ctx, r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary  Read a model sidecar
// @Tags     catalog
// @Produce  json
// @Param    path query string false "sub-path relative to the base directory"
// @Param    name query string true  "model base name"
// @Success  200 {object} types.SidecarConfig
// @Failure  400 {object} types.ErrorResponse
// @Failure  403 {object} types.ErrorResponse
// @Failure  404 {object} types.ErrorResponse
// @Router   /lora-config [get]
func (h *handlers) getLoraConfig(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cfg, err := h.svc.LoraConfig(q.Get("path"), q.Get("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// @Summary  Overwrite a model sidecar
// @Tags     catalog
// @Accept   json
// @Produce  json
// @Param    body body types.LoraConfigRequest true "sidecar"
// @Success  200 {object} types.StatusOK
// @Failure  400 {object} types.ErrorResponse
// @Failure  403 {object} types.ErrorResponse
// @Router   /lora-config [post]
func (h *handlers) saveLoraConfig(w http.ResponseWriter, r *http.Request) {
	var req types.LoraConfigRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.SaveLoraConfig(req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.StatusOK{Status: "success"})
}

// @Summary  Record a model selection
// @Tags     clicks
// @Accept   json
// @Produce  json
// @Param    body body types.ClickRequest true "click"
// @Success  200 {object} types.ClickResponse
// @Failure  400 {object} types.ErrorResponse
// @Router   /clicks [post]
func (h *handlers) recordClick(w http.ResponseWriter, r *http.Request) {
	var req types.ClickRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.RecordClick(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary  Serve a model preview image
// @Tags     previews
// @Produce  png
// @Param    path query string false "sub-path relative to the base directory"
// @Param    file query string true  "image file name"
// @Success  200 {file} binary
// @Failure  400 {object} types.ErrorResponse
// @Failure  403 {object} types.ErrorResponse
// @Failure  404 {object} types.ErrorResponse
// @Router   /preview [get]
func (h *handlers) preview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := h.svc.PreviewFile(q.Get("path"), q.Get("file"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.ServeFile(w, r, p)
}

// @Summary  List the previews of a model
// @Tags     previews
// @Produce  json
// @Param    path query string false "sub-path relative to the base directory"
// @Param    name query string true  "model base name"
// @Success  200 {object} types.PreviewsResponse
// @Failure  400 {object} types.ErrorResponse
// @Failure  403 {object} types.ErrorResponse
// @Failure  404 {object} types.ErrorResponse
// @Router   /previews [get]
func (h *handlers) previews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.Previews(q.Get("path"), q.Get("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary  Upload a model preview
// @Tags     previews
// @Accept   multipart/form-data
// @Produce  json
// @Param    file      formData file   true  "image"
// @Param    lora_name formData string true  "model base name"
// @Param    path      formData string false "sub-path"
// @Success  200 {object} types.UploadPreviewResponse
// @Failure  400 {object} types.ErrorResponse
// @Failure  429 {object} types.ErrorResponse
// @Router   /upload-preview [post]
func (h *handlers) uploadPreview(w http.ResponseWriter, r *http.Request) {
	data, ok := readUpload(w, r)
	if !ok {
		return
	}
	res, err := h.svc.UploadPreview(r.FormValue("path"), r.FormValue("lora_name"), data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary  Promote a preview to the primary image
// @Tags     previews
// @Accept   json
// @Produce  json
// @Param    body body types.SwapPreviewRequest true "swap"
// @Success  200 {object} types.StatusOK
// @Failure  400 {object} types.ErrorResponse
// @Failure  403 {object} types.ErrorResponse
// @Failure  404 {object} types.ErrorResponse
// @Router   /swap-preview [post]
func (h *handlers) swapPreview(w http.ResponseWriter, r *http.Request) {
	var req types.SwapPreviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.SwapPreview(req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.StatusOK{Status: "success"})
}

// @Summary  List combinations
// @Tags     combinations
// @Produce  json
// @Success  200 {object} types.CombinationsResponse
// @Router   /combinations [get]
func (h *handlers) listCombinations(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Combinations()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary  Create a combination
// @Description Stores the body verbatim. "id" and "created_at" are assigned by the server; "preview_path" and "previews" are reserved.
// @Tags     combinations
// @Accept   json
// @Produce  json
// @Param    body body object true "combination fields"
// @Success  201 {object} types.Combination
// @Failure  400 {object} types.ErrorResponse
// @Router   /combinations [post]
func (h *handlers) createCombination(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if !decodeJSON(w, r, &fields) {
		return
	}
	c, err := h.svc.CreateCombination(fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// @Summary  Delete a combination
// @Tags     combinations
// @Produce  json
// @Param    id path string true "combination id"
// @Success  200 {object} types.StatusOK
// @Failure  404 {object} types.ErrorResponse
// @Router   /combinations/{id} [delete]
func (h *handlers) deleteCombination(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCombination(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.StatusOK{Status: "success"})
}

// @Summary  Add a combination preview
// @Tags     combinations
// @Accept   multipart/form-data
// @Produce  json
// @Param    id   path     string true "combination id"
// @Param    file formData file   true "png, jpeg or webp image"
// @Success  200 {object} types.UploadPreviewResponse
// @Failure  400 {object} types.ErrorResponse
// @Failure  404 {object} types.ErrorResponse
// @Router   /combinations/{id}/previews [post]
func (h *handlers) addCombinationPreview(w http.ResponseWriter, r *http.Request) {
	data, ok := readUpload(w, r)
	if !ok {
		return
	}
	res, err := h.svc.AddCombinationPreview(chi.URLParam(r, "id"), data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary  Serve a combination preview image
// @Tags     combinations
// @Produce  png
// @Param    id   path string true "combination id"
// @Param    file path string true "preview file name"
// @Success  200 {file} binary
// @Failure  404 {object} types.ErrorResponse
// @Router   /combinations/{id}/previews/{file} [get]
func (h *handlers) combinationPreview(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.CombinationPreviewFile(chi.URLParam(r, "id"), chi.URLParam(r, "file"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.ServeFile(w, r, p)
}

// @Summary  Delete a combination preview
// @Tags     combinations
// @Produce  json
// @Param    id   path string true "combination id"
// @Param    file path string true "preview file name"
// @Success  200 {object} types.StatusOK
// @Failure  404 {object} types.ErrorResponse
// @Failure  409 {object} types.ErrorResponse "last remaining preview"
// @Router   /combinations/{id}/previews/{file} [delete]
func (h *handlers) removeCombinationPreview(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveCombinationPreview(chi.URLParam(r, "id"), chi.URLParam(r, "file")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.StatusOK{Status: "success"})
}
