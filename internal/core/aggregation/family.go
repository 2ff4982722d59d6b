package aggregation

// Aggregate family names. Each family is one named artifact plus one live
// aggregation path with an identical row schema.
const (
	FamilyDaily    = "daily"
	FamilyCities   = "avg_distance_by_city"
	FamilyHourly   = "rush_hours"
	FamilyTopZones = "top_zones"
	FamilyWeekday  = "by_day_of_week"
)

// FamilySpec describes one aggregate family: where its artifact lives and
// which query filters it can serve. The resolver consults SupportsCityFilter
// instead of hard-coding per-endpoint behavior. A family that does not
// support the filter simply never receives one (its endpoint exposes no
// filter parameter).
type FamilySpec struct {
	Name     string
	Artifact string // artifact file name within the artifact store

	// SupportsCityFilter marks families whose live path can apply a city
	// filter. The artifact is always computed unfiltered, so a supplied
	// filter forces the live path regardless of artifact presence.
	SupportsCityFilter bool
}

// Families is the registry of all aggregate families.
// To add a family: define its row type, add an entry here, and wire the
// matching StatsReader method. No switch statements elsewhere.
var Families = map[string]FamilySpec{
	FamilyDaily:    {Name: FamilyDaily, Artifact: "daily.json", SupportsCityFilter: true},
	FamilyCities:   {Name: FamilyCities, Artifact: "avg_distance.json"},
	FamilyHourly:   {Name: FamilyHourly, Artifact: "rush_hours.json", SupportsCityFilter: true},
	FamilyTopZones: {Name: FamilyTopZones, Artifact: "top_zones.json"},
	FamilyWeekday:  {Name: FamilyWeekday, Artifact: "by_day_of_week.json"},
}

// ValidFamily reports whether name is a registered aggregate family.
func ValidFamily(name string) bool {
	_, ok := Families[name]
	return ok
}
