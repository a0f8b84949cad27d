package api

import (
	"github.com/jmswain/bindery/internal/claims"
	"github.com/jmswain/bindery/internal/faces"
	"github.com/jmswain/bindery/internal/pipeline"
	"github.com/jmswain/bindery/internal/safety"
	"github.com/jmswain/bindery/internal/workers"
	"github.com/jmswain/bindery/internal/yearbooks"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Yearbooks yearbooks.System
	Faces     faces.System
	Claims    claims.System
	Safety    safety.System
	Pipeline  pipeline.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	yearbooksSystem := yearbooks.New(
		db,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	facesSystem := faces.New(db, runtime.Logger)
	safetySystem := safety.New(db, runtime.Logger)

	claimsSystem := claims.New(db, runtime.Logger, runtime.Pagination)

	client := workers.NewHTTPClient(
		map[string]string{
			string(yearbooks.StageSafety): runtime.Pipeline.SafetyURL,
			string(yearbooks.StageOCR):    runtime.Pipeline.OCRURL,
			string(yearbooks.StageFace):   runtime.Pipeline.FaceURL,
			string(yearbooks.StageTiling): runtime.Pipeline.TilerURL,
		},
		runtime.Pipeline.DispatchTimeoutDuration(),
	)

	gateway := workers.NewGateway(db, client, runtime.Logger)

	pipelineSystem := pipeline.New(
		yearbooksSystem,
		facesSystem,
		safetySystem,
		gateway,
		pipeline.Policy{MaxAttempts: runtime.Pipeline.MaxAttempts},
		runtime.Logger,
	)

	return &Domain{
		Yearbooks: yearbooksSystem,
		Faces:     facesSystem,
		Claims:    claimsSystem,
		Safety:    safetySystem,
		Pipeline:  pipelineSystem,
	}
}
