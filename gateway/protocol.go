package gateway

import (
	"encoding/json"

	"github.com/puravparab/PaperTrail"
)

// Actions understood by the gateway.
const (
	ActionGetSavedPapers   = "getSavedPapers"
	ActionSavePaper        = "savePaper"
	ActionRemovePaper      = "removePaper"
	ActionCheckPaperExists = "checkPaperExists"
	ActionGetPaper         = "getPaper"
	ActionSearchPapers     = "searchPapers"
)

// Request is the envelope sent to the gateway. Only the fields relevant to
// the action are read.
type Request struct {
	// ID correlates a request with its logs. It is generated when empty.
	ID string `json:"id,omitempty"`

	Action  string            `json:"action"`
	Paper   *papertrail.Paper `json:"paper,omitempty"`
	PaperID string            `json:"paperId,omitempty"`
	Field   string            `json:"field,omitempty"`
	Value   string            `json:"value,omitempty"`
}

// Response is the envelope sent back by the gateway. Reads fill Papers,
// Paper or Exists, writes fill Success, failures fill Error.
type Response struct {
	Papers  []papertrail.Paper `json:"papers"`
	Paper   *papertrail.Paper  `json:"paper"`
	Success *bool              `json:"success"`
	Exists  *bool              `json:"exists"`
	Error   string             `json:"error"`
}

// MarshalJSON only writes the fields that are set. An empty but non nil
// list of papers is written as [].
func (r Response) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{})
	if r.Papers != nil {
		m["papers"] = r.Papers
	}
	if r.Paper != nil {
		m["paper"] = r.Paper
	}
	if r.Success != nil {
		m["success"] = *r.Success
	}
	if r.Exists != nil {
		m["exists"] = *r.Exists
	}
	if r.Error != "" {
		m["error"] = r.Error
	}
	return json.Marshal(m)
}

// Succeeded is true for write responses with success set.
func (r Response) Succeeded() bool {
	return r.Success != nil && *r.Success
}

func papersResponse(papers []papertrail.Paper) Response {
	if papers == nil {
		papers = []papertrail.Paper{}
	}
	return Response{Papers: papers}
}

func paperResponse(paper papertrail.Paper) Response {
	return Response{Paper: &paper}
}

func errorResponse(err error) Response {
	return Response{Error: err.Error()}
}

func successResponse() Response {
	success := true
	return Response{Success: &success}
}

func failureResponse(err error) Response {
	success := false
	return Response{Success: &success, Error: err.Error()}
}

func existsResponse(exists bool, err error) Response {
	res := Response{Exists: &exists}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}
