package espn

// Payloads del API de ESPN, recortados a los campos que consumimos.

type scoreboardResponse struct {
	Events []event `json:"events"`
}

type event struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	Status       eventStatus   `json:"status"`
	Competitions []competition `json:"competitions"`
}

type eventStatus struct {
	Period       int        `json:"period"`
	DisplayClock string     `json:"displayClock"`
	Type         statusType `json:"type"`
}

type statusType struct {
	State     string `json:"state"` // pre | in | post
	Completed bool   `json:"completed"`
}

type competition struct {
	Competitors []competitor `json:"competitors"`
}

type competitor struct {
	HomeAway string `json:"homeAway"`
	Score    string `json:"score"`
	Team     team   `json:"team"`
}

type team struct {
	DisplayName string `json:"displayName"`
}

// Resumen de partido: solo nos interesa pickcenter para las líneas.

type summaryResponse struct {
	Pickcenter []pickcenterEntry `json:"pickcenter"`
}

type pickcenterEntry struct {
	Total totalMarket `json:"total"`
}

type totalMarket struct {
	Over overOutcome `json:"over"`
}

type overOutcome struct {
	Open  lineValue `json:"open"`
	Close lineValue `json:"close"`
}

type lineValue struct {
	Line string `json:"line"` // formato "o144.5"
}
