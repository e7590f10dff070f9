package core

// AfterFinder is called on each materialized row.
type AfterFinder interface{ AfterFind() error }

func afterFind[T any](item *T) error {
	if h, ok := any(item).(AfterFinder); ok {
		return h.AfterFind()
	}
	if h, ok := any(*item).(AfterFinder); ok {
		return h.AfterFind()
	}
	return nil
}
