package models

// Teacher is a staff account. Only its username is consulted, to decide
// whether a caller may publish announcements.
type Teacher struct {
	Username string `bson:"_id" db:"username" json:"username"`
}
