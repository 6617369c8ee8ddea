package storage

// NotFoundError is returned when a record doesn't exist in the store.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return "transcript not found"
	}

	return "transcript not found: " + e.ID
}
