package models

// ReferencesModel carries the records that entries refer to by id.
type ReferencesModel struct {
	Agencies   []Agency `json:"agencies"`
	Routes     []Route  `json:"routes"`
	Stops      []Stop   `json:"stops"`
	Situations []Alert  `json:"situations"`
}

// NewEmptyReferences creates a new empty References model with initialized empty slices
func NewEmptyReferences() ReferencesModel {
	return ReferencesModel{
		Agencies:   []Agency{},
		Routes:     []Route{},
		Stops:      []Stop{},
		Situations: []Alert{},
	}
}

// Agency is an operator.
type Agency struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Timezone string `json:"timezone"`
}
