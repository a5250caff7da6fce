package bracket

import "github.com/google/uuid"

type Participant struct {
	ID   int64     `db:"id" json:"id"`
	UID  uuid.UUID `db:"uid" json:"uid"`
	Name string    `db:"name" json:"name"`
}

func Names(participants []Participant) []string {
	names := make([]string, len(participants))
	for i, p := range participants {
		names[i] = p.Name
	}
	return names
}
