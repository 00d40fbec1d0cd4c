package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loradex/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Ready() bool
	Status() types.StatusResponse
	Config() types.ServiceConfig
	SetConfig(c types.ServiceConfig) error
	BaseModels() []string

	Folders(rel string) (types.FoldersResponse, error)
	LoraFiles(ctx context.Context, rel, search string) (types.LoraFilesResponse, error)
	ScanAll(ctx context.Context, search string) (types.LoraFilesResponse, error)
	LoraConfig(rel, name string) (types.SidecarConfig, error)
	SaveLoraConfig(req types.LoraConfigRequest) error
	RecordClick(req types.ClickRequest) (types.ClickResponse, error)

	PreviewFile(rel, file string) (string, error)
	Previews(rel, name string) (types.PreviewsResponse, error)
	UploadPreview(rel, name string, data []byte) (types.UploadPreviewResponse, error)
	SwapPreview(req types.SwapPreviewRequest) error

	Combinations() (types.CombinationsResponse, error)
	CreateCombination(fields map[string]any) (types.Combination, error)
	DeleteCombination(id string) error
	AddCombinationPreview(id string, data []byte) (types.UploadPreviewResponse, error)
	CombinationPreviewFile(id, file string) (string, error)
	RemoveCombinationPreview(id, file string) error
}

func NewMux(svc Service) http.Handler {
	h := &handlers{svc: svc}
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(requestLogger)
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5, "application/json"))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("no base path"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/status", h.status)
	r.Get("/config", h.getConfig)
	r.Get("/base-models", h.baseModels)
	r.Get("/folders", h.folders)
	r.Get("/lora-files", h.loraFiles)
	r.Get("/scan-all-loras", h.scanAll)
	r.Get("/lora-config", h.getLoraConfig)
	r.Get("/preview", h.preview)
	r.Get("/previews", h.previews)
	r.Get("/combinations", h.listCombinations)
	r.Get("/combinations/{id}/previews/{file}", h.combinationPreview)

	r.Group(func(r chi.Router) {
		r.Use(rateLimit(newMutationLimiter()))
		r.Post("/config", h.setConfig)
		r.Post("/lora-config", h.saveLoraConfig)
		r.Post("/clicks", h.recordClick)
		r.Post("/upload-preview", h.uploadPreview)
		r.Post("/swap-preview", h.swapPreview)
		r.Post("/combinations", h.createCombination)
		r.Delete("/combinations/{id}", h.deleteCombination)
		r.Post("/combinations/{id}/previews", h.addCombinationPreview)
		r.Delete("/combinations/{id}/previews/{file}", h.removeCombinationPreview)
	})

	MountSwagger(r)
	return r
}

func corsOptions() cors.Options {
	methods := corsAllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	}
	headers := corsAllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Content-Type", "X-Log-Level"}
	}
	origins := corsAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: methods,
		AllowedHeaders: headers,
		MaxAge:         300,
	}
}
