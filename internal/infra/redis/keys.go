package redis

const (
	itemKeyPrefix     = "guess:item:"
	itemVersionPrefix = "guess:itemver:"
	// itemGenerationKey is bumped when every cached item is dropped at once.
	itemGenerationKey = "guess:itemgen"
)

func itemKey(id string) string {
	return itemKeyPrefix + id
}

func itemVersionKey(id string) string {
	return itemVersionPrefix + id
}
