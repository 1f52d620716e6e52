package oddsapi

// Payload de /sports/{sport}/odds, recortado al mercado de totales.

type oddsGame struct {
	ID         string      `json:"id"`
	HomeTeam   string      `json:"home_team"`
	AwayTeam   string      `json:"away_team"`
	Bookmakers []bookmaker `json:"bookmakers"`
}

type bookmaker struct {
	Key     string   `json:"key"`
	Markets []market `json:"markets"`
}

type market struct {
	Key      string    `json:"key"`
	Outcomes []outcome `json:"outcomes"`
}

type outcome struct {
	Name  string  `json:"name"`
	Point float64 `json:"point"`
}

// totalsPoint devuelve la línea de totales del primer bookmaker que la
// publique, o false si ninguno lo hace.
func (g oddsGame) totalsPoint() (float64, bool) {
	for _, b := range g.Bookmakers {
		for _, m := range b.Markets {
			if m.Key != "totals" {
				continue
			}
			for _, o := range m.Outcomes {
				if o.Point > 0 {
					return o.Point, true
				}
			}
		}
	}
	return 0, false
}
