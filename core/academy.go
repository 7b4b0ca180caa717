package core

// DefaultAcademyID is the academy seeded by the initial migration.
// Self-registered users and their data belong to it.
const DefaultAcademyID = "00000000-0000-0000-0000-000000000001"

// AgeGroups are the squads players (and training sessions) are organised in.
var AgeGroups = []string{"U9", "U11", "U13", "U15", "U17", "U19"}

func IsAgeGroup(s string) bool {
	for _, ag := range AgeGroups {
		if s == ag {
			return true
		}
	}
	return false
}
