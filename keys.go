package likes

// Cache key families. The family names double as metric labels.
const (
	familyAggregate = "aggregate"
	familyItem      = "item-likes"
	familyUser      = "user-likes"
)

const aggregateKey = familyAggregate

func itemLikesKey(itemKey string) string {
	return familyItem + ":" + itemKey
}

func userLikesKey(itemKey, sessionID string) string {
	return familyUser + ":" + itemKey + ":" + sessionID
}
