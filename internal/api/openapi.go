package api

import (
	"github.com/jmswain/bindery/internal/config"
	"github.com/jmswain/bindery/pkg/openapi"
)

// buildSpec assembles the OpenAPI document for the service.
func buildSpec(cfg *config.Config) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"Yearbook": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":             {Type: "string", Format: "uuid"},
				"school_id":      {Type: "string", Format: "uuid"},
				"uploader_id":    {Type: "string", Format: "uuid"},
				"status":         {Type: "string", Enum: []any{"uploaded", "safety_scanning", "safety_passed", "safety_hold", "page_processing", "tiling", "ready", "failed"}},
				"storage_path":   {Type: "string"},
				"page_count":     {Type: "integer"},
				"failure_reason": {Type: "string"},
			},
		},
		"CreateYearbook": {
			Type:     "object",
			Required: []string{"school_id", "uploader_id", "storage_path", "page_count"},
			Properties: map[string]*openapi.Schema{
				"school_id":    {Type: "string", Format: "uuid"},
				"uploader_id":  {Type: "string", Format: "uuid"},
				"storage_path": {Type: "string", Description: "Blob key of the uploaded source document"},
				"page_count":   {Type: "integer", Minimum: float64Ptr(1)},
			},
		},
		"Page": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":            {Type: "string", Format: "uuid"},
				"yearbook_id":   {Type: "string", Format: "uuid"},
				"page_number":   {Type: "integer"},
				"image_path":    {Type: "string"},
				"ocr_status":    {Type: "string"},
				"face_status":   {Type: "string"},
				"tiling_status": {Type: "string"},
			},
		},
		"FaceRegion": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":         {Type: "string", Format: "uuid"},
				"page_id":    {Type: "string", Format: "uuid"},
				"bounds":     {Type: "object"},
				"claimed_by": {Type: "string", Format: "uuid"},
			},
		},
		"Claim": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":             {Type: "string", Format: "uuid"},
				"face_region_id": {Type: "string", Format: "uuid"},
				"claimant_id":    {Type: "string", Format: "uuid"},
				"status":         {Type: "string", Enum: []any{"pending", "verified", "rejected"}},
			},
		},
		"SubmitClaim": {
			Type:     "object",
			Required: []string{"claimant_id"},
			Properties: map[string]*openapi.Schema{
				"claimant_id": {Type: "string", Format: "uuid"},
			},
		},
		"ResolveClaim": {
			Type:     "object",
			Required: []string{"decision"},
			Properties: map[string]*openapi.Schema{
				"decision": {Type: "string", Enum: []any{"verify", "reject"}},
			},
		},
		"WorkerCallback": {
			Type:     "object",
			Required: []string{"job_handle", "outcome"},
			Properties: map[string]*openapi.Schema{
				"job_handle":  {Type: "string", Format: "uuid"},
				"outcome":     {Type: "string", Enum: []any{"success", "failure"}},
				"reason_code": {Type: "string"},
				"payload":     {Type: "object"},
			},
		},
		"ModerationDecision": {
			Type:     "object",
			Required: []string{"item_id", "decision", "reviewer_id"},
			Properties: map[string]*openapi.Schema{
				"item_id":     {Type: "string", Format: "uuid"},
				"decision":    {Type: "string", Enum: []any{"approved", "rejected"}},
				"reviewer_id": {Type: "string", Format: "uuid"},
			},
		},
	})

	spec.Paths["/yearbooks"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List yearbooks",
			Tags:    []string{"yearbooks"},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated yearbooks", "Yearbook"),
			},
		},
		Post: &openapi.Operation{
			Summary:     "Register a yearbook from an upload descriptor",
			Tags:        []string{"yearbooks"},
			RequestBody: openapi.RequestBodyJSON("CreateYearbook", true),
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Registered yearbook", "Yearbook"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/yearbooks/upload"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary: "Upload a yearbook document directly",
			Tags:    []string{"yearbooks"},
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Registered yearbook", "Yearbook"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/yearbooks/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find a yearbook",
			Tags:       []string{"yearbooks"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Yearbook identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Yearbook", "Yearbook"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete a yearbook",
			Tags:       []string{"yearbooks"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Yearbook identifier")},
			Responses: map[int]*openapi.Response{
				204: {Description: "Deleted"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/yearbooks/{id}/pages"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "List a yearbook's pages",
			Tags:       []string{"yearbooks"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Yearbook identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Pages", "Page"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/yearbooks/{id}/faces"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "List face regions detected across a yearbook",
			Tags:       []string{"faces"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Yearbook identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Face regions", "FaceRegion"),
			},
		},
	}

	spec.Paths["/faces/{id}/claims"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Submit an identity claim for a face region",
			Tags:        []string{"claims"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Face region identifier")},
			RequestBody: openapi.RequestBodyJSON("SubmitClaim", true),
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Pending claim", "Claim"),
				404: openapi.ResponseRef("NotFound"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
	}

	spec.Paths["/claims/{id}/resolve"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Adjudicate a claim",
			Tags:        []string{"claims"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Claim identifier")},
			RequestBody: openapi.RequestBodyJSON("ResolveClaim", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Resolved claim", "Claim"),
				404: openapi.ResponseRef("NotFound"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
	}

	spec.Paths["/callbacks/worker"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Receive a worker job completion report",
			Tags:        []string{"pipeline"},
			RequestBody: openapi.RequestBodyJSON("WorkerCallback", true),
			Responses: map[int]*openapi.Response{
				200: {Description: "Callback accepted"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/callbacks/moderation"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Receive a moderation decision for a held yearbook",
			Tags:        []string{"pipeline"},
			RequestBody: openapi.RequestBodyJSON("ModerationDecision", true),
			Responses: map[int]*openapi.Response{
				200: {Description: "Decision accepted"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	return spec
}

func float64Ptr(v float64) *float64 { return &v }
