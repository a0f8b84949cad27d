package api

import (
	"net/http"

	"github.com/jmswain/bindery/internal/config"
	"github.com/jmswain/bindery/pkg/openapi"
	"github.com/jmswain/bindery/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	yearbookHandler := domain.Yearbooks.Handler(
		domain.Pipeline,
		cfg.API.MaxUploadSizeBytes(),
	)
	faceHandler := domain.Faces.Handler()
	claimHandler := domain.Claims.Handler()
	safetyHandler := domain.Safety.Handler()
	pipelineHandler := domain.Pipeline.Handler()

	store := newStorageHandler(
		runtime.Storage,
		runtime.Logger,
		cfg.Storage.MaxListSize,
	)

	routes.Register(
		mux,
		yearbookHandler.Routes(),
		yearbookHandler.PageRoutes(),
		faceHandler.Routes(),
		faceHandler.YearbookRoutes(),
		claimHandler.Routes(),
		claimHandler.FaceRoutes(),
		safetyHandler.Routes(),
		pipelineHandler.Routes(),
		store.routes(),
	)

	specBytes, err := openapi.MarshalJSON(buildSpec(cfg))
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	return nil
}
