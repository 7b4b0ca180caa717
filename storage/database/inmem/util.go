package inmemdb

// sortableTime formats times so that they sort lexically.
const sortableTime = "2006-01-02T15:04:05.000000000"

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
