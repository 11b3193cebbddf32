package research

import "errors"

// ErrAccessDenied is returned when research data is requested without a
// granted capability.
var ErrAccessDenied = errors.New("research access required")

// Project is one collaborative research project.
type Project struct {
	Title         string `json:"title"`
	Status        string `json:"status"`
	Collaborators int    `json:"collaborators"`
	Region        string `json:"region"`
}

var projects = []Project{
	{Title: "Project: Delhi Smog Tower V2", Status: "Active", Collaborators: 12, Region: "New Delhi, IN"},
	{Title: "Liquid Tree Optimization (Algae #45)", Status: "Review", Collaborators: 8, Region: "Belgrade, RS"},
	{Title: "Satellite Calibration Study", Status: "Draft", Collaborators: 3, Region: "Global"},
}

// Projects lists the research projects visible to c.
func Projects(c Capability) ([]Project, error) {
	if !c.Granted() {
		return nil, ErrAccessDenied
	}
	out := make([]Project, len(projects))
	copy(out, projects)
	return out, nil
}
