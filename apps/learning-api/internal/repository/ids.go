package repository

import "github.com/google/uuid"

// validID reports whether id can name a row. Primary keys are UUID columns,
// so any other string matches nothing.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
