package threatdesk

// ThreatActor is a group or individual attributed to one or more
// campaigns.
type ThreatActor struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// TopThreatActor is a dashboard row ranking an actor by the number of
// distinct indicators reachable through its campaigns.
type TopThreatActor struct {
	ID             string `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	IndicatorCount int    `db:"indicator_count" json:"indicator_count"`
}

// TopThreatActorLimit bounds the dashboard's actor ranking.
const TopThreatActorLimit = 5
